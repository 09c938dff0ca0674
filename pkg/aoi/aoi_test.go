package aoi

import (
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

func TestParseRegionName(t *testing.T) {
	tests := []struct {
		in         string
		county     string
		state      string
		wantErr    bool
	}{
		{"Washington, OR", "Washington", "OR", false},
		{"  Lane ,or ", "Lane", "OR", false},
		{"St. Louis, MO", "St. Louis", "MO", false},
		{"NoComma", "", "", true},
		{", OR", "", "", true},
		{"Lane, Oregon", "", "", true},
	}

	for _, tt := range tests {
		county, state, err := ParseRegionName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRegionName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRegionName(%q): %v", tt.in, err)
			continue
		}
		if county != tt.county || state != tt.state {
			t.Errorf("ParseRegionName(%q) = (%q, %q), want (%q, %q)",
				tt.in, county, state, tt.county, tt.state)
		}
	}
}

func TestLookupState(t *testing.T) {
	s, err := LookupState("or")
	if err != nil {
		t.Fatalf("LookupState(or): %v", err)
	}
	if s.FIPS != "41" || s.Name != "Oregon" {
		t.Errorf("LookupState(or) = %+v", s)
	}

	if _, err := LookupState("ZZ"); err == nil {
		t.Error("LookupState(ZZ): expected error")
	}
}

func TestMultiPolygonFromShape(t *testing.T) {
	// One clockwise outer square with a counter-clockwise hole, then a
	// second clockwise square: two polygons, the first with a hole.
	points := []shp.Point{
		// outer ring, clockwise
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
		// hole, counter-clockwise
		{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 4, Y: 4},
		// second outer ring, clockwise
		{X: 20, Y: 0}, {X: 20, Y: 5}, {X: 25, Y: 5}, {X: 25, Y: 0}, {X: 20, Y: 0},
	}
	poly := &shp.Polygon{
		NumParts:  3,
		NumPoints: int32(len(points)),
		Parts:     []int32{0, 5, 10},
		Points:    points,
	}

	mp := MultiPolygonFromShape(poly)
	if len(mp) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(mp))
	}
	if len(mp[0]) != 2 {
		t.Errorf("first polygon should have outer ring + hole, got %d rings", len(mp[0]))
	}
	if len(mp[1]) != 1 {
		t.Errorf("second polygon should have 1 ring, got %d", len(mp[1]))
	}
}

func TestProjectionOrigin(t *testing.T) {
	// The central meridian maps to x == 0 and y grows northward.
	origin := ToPlanar(orb.Point{albersLon0, albersLat0})
	if origin[0] > 1e-6 || origin[0] < -1e-6 {
		t.Errorf("origin x = %v, want 0", origin[0])
	}

	north := ToPlanar(orb.Point{albersLon0, albersLat0 + 5})
	if north[1] <= origin[1] {
		t.Errorf("northward point should have larger y: %v vs %v", north[1], origin[1])
	}

	east := ToPlanar(orb.Point{albersLon0 + 5, albersLat0})
	if east[0] <= origin[0] {
		t.Errorf("eastward point should have larger x: %v vs %v", east[0], origin[0])
	}
}

func TestRegionContainsLonLat(t *testing.T) {
	// A rough 1-degree box around Corvallis, OR.
	geo := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{-124.0, 44.0}, {-123.0, 44.0}, {-123.0, 45.0}, {-124.0, 45.0}, {-124.0, 44.0},
	}}}
	region := &Region{
		Name:     "Benton, OR",
		State:    "OR",
		Boundary: MultiPolygonToPlanar(geo),
	}

	if !region.ContainsLonLat(-123.5, 44.5) {
		t.Error("interior point should be contained")
	}
	if region.ContainsLonLat(-120.0, 44.5) {
		t.Error("exterior point should not be contained")
	}
	if region.Area() <= 0 {
		t.Errorf("Area() = %v, want > 0", region.Area())
	}
}
