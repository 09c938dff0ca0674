// Package aggregate computes per-plot stand metrics from raw inventory
// records: basal area per acre (BAPA), trees per acre (TPA), and quadratic
// mean diameter (QMD).
package aggregate

import (
	"math"
	"sort"

	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// BasalAreaFactor converts diameter-squared inches to square feet of basal
// area: pi / (4 * 144), rounded as conventionally used in forest mensuration.
const BasalAreaFactor = 0.005454

// Option configures the aggregator.
type Option func(*aggregator)

// WithYearFloor sets the oldest inventory year kept in the output.
// Plots measured before the floor are excluded.
func WithYearFloor(year int) Option {
	return func(a *aggregator) {
		a.yearFloor = year
	}
}

type aggregator struct {
	yearFloor int
}

// plotSums accumulates the null-safe per-plot sums.
type plotSums struct {
	bapa float64
	tpa  float64
}

// PlotMetrics aggregates tree records into one PlotMetric per plot and
// joins in plot metadata.
//
// The join against plots is a full outer join on plot ID: a plot present
// in only one input still appears, with its missing aggregate fields
// zero-filled (never dropped silently). Rows are then filtered to
// inventory years at or above the floor; tree-only plots carry year zero
// and fall out here. Records missing the expansion factor are ignored by
// both sums; a record missing only the diameter still contributes to TPA
// but adds zero basal area.
//
// Output is sorted by plot ID for deterministic downstream consumption.
func PlotMetrics(trees []inventory.TreeRecord, plots []inventory.PlotRecord, source inventory.SourceID, opts ...Option) []inventory.PlotMetric {
	a := &aggregator{yearFloor: constants.DefaultYearFloor}
	for _, opt := range opts {
		opt(a)
	}

	sums := make(map[string]*plotSums)
	for _, tree := range trees {
		id := inventory.NormalizePlotID(tree.PlotID)
		if tree.TPAUnadjusted == nil {
			continue
		}
		s, ok := sums[id]
		if !ok {
			s = &plotSums{}
			sums[id] = s
		}
		s.tpa += *tree.TPAUnadjusted
		if tree.Diameter != nil {
			dia := *tree.Diameter
			s.bapa += *tree.TPAUnadjusted * BasalAreaFactor * dia * dia
		}
	}

	years := make(map[string]int, len(plots))
	for _, plot := range plots {
		years[inventory.NormalizePlotID(plot.PlotID)] = plot.InventoryYear
	}

	// Union of plot IDs from both sides.
	ids := make(map[string]struct{}, len(sums)+len(years))
	for id := range sums {
		ids[id] = struct{}{}
	}
	for id := range years {
		ids[id] = struct{}{}
	}

	metrics := make([]inventory.PlotMetric, 0, len(ids))
	for id := range ids {
		var bapa, tpa float64
		if s, ok := sums[id]; ok {
			bapa, tpa = s.bapa, s.tpa
		}

		year := years[id] // zero when the plot has no metadata row
		if year < a.yearFloor {
			continue
		}

		metrics = append(metrics, inventory.PlotMetric{
			PlotID:                id,
			BasalAreaPerAcre:      bapa,
			TreesPerAcre:          tpa,
			QuadraticMeanDiameter: qmd(bapa, tpa),
			InventoryYear:         year,
			Source:                source,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].PlotID < metrics[j].PlotID
	})

	return metrics
}

// qmd derives the quadratic mean diameter from the two density sums.
// The expression is undefined at tpa == 0; zero is substituted so
// downstream arithmetic and plotting stay finite.
func qmd(bapa, tpa float64) float64 {
	if tpa <= 0 {
		return 0
	}
	return math.Sqrt(bapa / tpa / BasalAreaFactor)
}
