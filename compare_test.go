package biometricsbits

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

type staticResolver struct {
	region *aoi.Region
	err    error
}

func (r *staticResolver) Resolve(_ context.Context, _ string) (*aoi.Region, error) {
	return r.region, r.err
}

// fakeSource serves canned tables and records the request it saw.
type fakeSource struct {
	id      sources.ID
	tables  *inventory.Tables
	fetchEr error
	lastReq sources.Request
	cleaned bool
}

func (f *fakeSource) ID() sources.ID { return f.id }

func (f *fakeSource) Fetch(_ context.Context, req sources.Request) error {
	f.lastReq = req
	return f.fetchEr
}

func (f *fakeSource) Tables() *inventory.Tables { return f.tables }

func (f *fakeSource) Cleanup() error {
	f.cleaned = true
	return nil
}

func testRegion() *aoi.Region {
	geo := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{-124.0, 44.0}, {-123.0, 44.0}, {-123.0, 45.0}, {-124.0, 45.0}, {-124.0, 44.0},
	}}}
	return &aoi.Region{
		Name:       "Benton, OR",
		State:      "OR",
		Boundary:   aoi.MultiPolygonToPlanar(geo),
		Geographic: geo,
	}
}

func newFakeSource(id sources.ID, tpa float64) *fakeSource {
	tables := inventory.NewTables()
	tables.SetTrees([]inventory.TreeRecord{
		{PlotID: "1", TPAUnadjusted: inventory.Float64(tpa), Diameter: inventory.Float64(10)},
	})
	tables.SetPlots([]inventory.PlotRecord{
		{PlotID: "1", InventoryYear: 2015},
	})
	return &fakeSource{id: id, tables: tables}
}

func newTestPipeline(t *testing.T, srcs *sources.Sources, opts ...Option) Pipeline {
	t.Helper()
	base := []Option{
		WithRegion("Benton, OR"),
		WithCacheDir(t.TempDir()),
		WithResolver(&staticResolver{region: testRegion()}),
		WithSources(srcs),
	}
	p, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func TestCompare(t *testing.T) {
	dm := newFakeSource(sources.DataMartID, 6.0)
	bk := newFakeSource(sources.BulkID, 8.0)
	srcs := sources.New()
	srcs.Set(dm.ID(), dm)
	srcs.Set(bk.ID(), bk)

	p := newTestPipeline(t, srcs, WithIndexedAccess(true), WithMostRecentCycle(true))

	result, err := p.Compare(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Benton, OR", result.Region.Name)
	assert.Len(t, result.Metrics, 2)
	assert.Len(t, result.Rows, 2)

	// Request flags reach every source.
	assert.True(t, dm.lastReq.Indexed)
	assert.True(t, bk.lastReq.MostRecent)
	require.NotNil(t, dm.lastReq.Region)

	// Each source's metrics carry its own tag and expansion factors.
	require.Len(t, result.Metrics[inventory.SourceDataMart], 1)
	assert.Equal(t, 6.0, result.Metrics[inventory.SourceDataMart][0].TreesPerAcre)
	require.Len(t, result.Metrics[inventory.SourceBulk], 1)
	assert.Equal(t, 8.0, result.Metrics[inventory.SourceBulk][0].TreesPerAcre)
}

func TestCompareYearFloorFiltersPlots(t *testing.T) {
	src := newFakeSource(sources.DataMartID, 6.0)
	src.tables.SetPlots([]inventory.PlotRecord{{PlotID: "1", InventoryYear: 2005}})
	srcs := sources.New()
	srcs.Set(src.ID(), src)

	p := newTestPipeline(t, srcs)

	result, err := p.Compare(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Metrics[inventory.SourceDataMart])
}

func TestCompareFetchFailure(t *testing.T) {
	src := newFakeSource(sources.BulkID, 8.0)
	src.fetchEr = errors.ErrSourceUnavailable
	srcs := sources.New()
	srcs.Set(src.ID(), src)

	p := newTestPipeline(t, srcs)

	_, err := p.Compare(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func TestCompareResolveFailure(t *testing.T) {
	srcs := sources.New()
	p := newTestPipeline(t, srcs, WithResolver(&staticResolver{
		err: errors.NewNotFoundError("county", "Nowhere, OR"),
	}))

	_, err := p.Compare(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestNewRequiresRegion(t *testing.T) {
	_, err := New(WithCacheDir(t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCleanup(t *testing.T) {
	src := newFakeSource(sources.BulkID, 8.0)
	srcs := sources.New()
	srcs.Set(src.ID(), src)

	p := newTestPipeline(t, srcs)
	require.NoError(t, p.Cleanup())
	assert.True(t, src.cleaned)
}
