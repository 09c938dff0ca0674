package biometricsbits

import (
	"context"

	"github.com/SilviaTerra/BiometricsBits/internal/sources"
	"github.com/SilviaTerra/BiometricsBits/pkg/aggregate"
	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
	"github.com/SilviaTerra/BiometricsBits/pkg/reconcile"
)

// Result is the outcome of one cross-source comparison run.
type Result struct {
	// Region is the resolved area of interest.
	Region *aoi.Region

	// Metrics holds per-plot metrics keyed by source.
	Metrics map[inventory.SourceID][]inventory.PlotMetric

	// Rows is the reconciled long-form comparison across sources.
	Rows []inventory.ComparisonRow
}

// Compare resolves the region, fetches every configured source,
// aggregates per-plot metrics, and reconciles them.
func (p *pipeline) Compare(ctx context.Context) (*Result, error) {
	region, err := p.loader.Resolve(ctx, p.config.region)
	if err != nil {
		return nil, err
	}
	p.logger.Info().
		Str("region", region.Name).
		Float64("area_acres", region.Area()/4046.8564224).
		Msg("resolved area of interest")

	req := sources.Request{
		Region:     region,
		Indexed:    p.config.indexed,
		MostRecent: p.config.mostRecent,
	}

	metrics := make(map[inventory.SourceID][]inventory.PlotMetric)
	for _, src := range p.sources.List() {
		// Sources wrap their own failures; propagate as the pipeline abort.
		if err := src.Fetch(ctx, req); err != nil {
			return nil, err
		}

		tables := src.Tables()
		p.logger.Info().
			Str("source", string(src.ID())).
			Int("trees", tables.Len(inventory.TableTree)).
			Int("plots", tables.Len(inventory.TablePlot)).
			Msg("fetched inventory tables")

		metrics[src.ID()] = aggregate.PlotMetrics(
			tables.Trees(), tables.Plots(), src.ID(),
			aggregate.WithYearFloor(p.config.yearFloor),
		)
	}

	reconciled := reconcile.Sources(metrics)
	return &Result{
		Region:  region,
		Metrics: reconciled.Metrics,
		Rows:    reconciled.Rows,
	}, nil
}
