// Package aoi resolves named regions to area-of-interest polygons. It
// downloads a county boundary shapefile archive, reads the matching county
// polygon, and projects it to a planar coordinate reference so plot
// locations can be clipped with planar point-in-polygon tests.
package aoi

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Region is a resolved area of interest. Boundary is stored in the planar
// CRS produced by ToPlanar; Contains and Area operate in that plane. The
// geographic (lon/lat) polygon is kept alongside for collaborators that
// query remote endpoints by geographic extent.
type Region struct {
	// Name is the resolved region name, e.g. "Washington, OR".
	Name string

	// State is the two-letter state abbreviation the region belongs to.
	State string

	// Boundary is the region polygon in planar (Albers) coordinates.
	Boundary orb.MultiPolygon

	// Geographic is the same polygon in lon/lat (WGS84) coordinates.
	Geographic orb.MultiPolygon
}

// GeographicBound returns the lon/lat bounding box of the region.
func (r *Region) GeographicBound() orb.Bound {
	return r.Geographic.Bound()
}

// ContainsLonLat reports whether the geographic point lies inside the
// region. The point is projected into the region's plane first.
func (r *Region) ContainsLonLat(lon, lat float64) bool {
	return planar.MultiPolygonContains(r.Boundary, ToPlanar(orb.Point{lon, lat}))
}

// Area returns the region area in square meters.
func (r *Region) Area() float64 {
	return planar.Area(r.Boundary)
}
