package aoi

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// CONUS Albers equal-area parameters (the EPSG:5070 parallels, spherical
// form). Equal-area in a consistent plane is all the clipping step needs;
// sub-meter ellipsoidal accuracy is not.
const (
	earthRadius = 6378137.0

	albersLat0 = 23.0  // latitude of origin
	albersLon0 = -96.0 // central meridian
	albersLat1 = 29.5  // first standard parallel
	albersLat2 = 45.5  // second standard parallel
)

// albers is the forward CONUS Albers projection, lon/lat degrees in,
// planar meters out.
var albers orb.Projection = func(p orb.Point) orb.Point {
	lon := p[0] * math.Pi / 180
	lat := p[1] * math.Pi / 180

	phi0 := albersLat0 * math.Pi / 180
	lam0 := albersLon0 * math.Pi / 180
	phi1 := albersLat1 * math.Pi / 180
	phi2 := albersLat2 * math.Pi / 180

	n := (math.Sin(phi1) + math.Sin(phi2)) / 2
	c := math.Cos(phi1)*math.Cos(phi1) + 2*n*math.Sin(phi1)

	rho := earthRadius / n * math.Sqrt(c-2*n*math.Sin(lat))
	rho0 := earthRadius / n * math.Sqrt(c-2*n*math.Sin(phi0))
	theta := n * (lon - lam0)

	return orb.Point{
		rho * math.Sin(theta),
		rho0 - rho*math.Cos(theta),
	}
}

// ToPlanar projects a geographic (lon/lat) point into the planar CRS.
func ToPlanar(p orb.Point) orb.Point {
	return albers(p)
}

// MultiPolygonToPlanar projects a geographic multipolygon into the planar CRS.
func MultiPolygonToPlanar(mp orb.MultiPolygon) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), albers)
}
