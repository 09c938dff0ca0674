package aggregate

import (
	"math"
	"testing"

	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestPlotMetricsWorkedExample(t *testing.T) {
	// Two trees on one plot: 2.0 tpa at 10", 1.0 tpa at 5".
	trees := []inventory.TreeRecord{
		{PlotID: "1", TPAUnadjusted: inventory.Float64(2.0), Diameter: inventory.Float64(10)},
		{PlotID: "1", TPAUnadjusted: inventory.Float64(1.0), Diameter: inventory.Float64(5)},
	}
	plots := []inventory.PlotRecord{{PlotID: "1", InventoryYear: 2015}}

	metrics := PlotMetrics(trees, plots, inventory.SourceDataMart)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}

	m := metrics[0]
	wantBAPA := 2.0*BasalAreaFactor*100 + 1.0*BasalAreaFactor*25 // 1.22715
	if !almostEqual(m.BasalAreaPerAcre, wantBAPA) {
		t.Errorf("BAPA = %v, want %v", m.BasalAreaPerAcre, wantBAPA)
	}
	if !almostEqual(m.TreesPerAcre, 3.0) {
		t.Errorf("TPA = %v, want 3.0", m.TreesPerAcre)
	}
	wantQMD := math.Sqrt(wantBAPA / 3.0 / BasalAreaFactor) // ~8.66
	if !almostEqual(m.QuadraticMeanDiameter, wantQMD) {
		t.Errorf("QMD = %v, want %v", m.QuadraticMeanDiameter, wantQMD)
	}
	if math.Abs(m.QuadraticMeanDiameter-8.66) > 0.01 {
		t.Errorf("QMD = %v, want ~8.66", m.QuadraticMeanDiameter)
	}
	if m.InventoryYear != 2015 {
		t.Errorf("InventoryYear = %d, want 2015", m.InventoryYear)
	}
	if m.Source != inventory.SourceDataMart {
		t.Errorf("Source = %q, want %q", m.Source, inventory.SourceDataMart)
	}
}

func TestPlotMetricsZeroTreePlotRetained(t *testing.T) {
	// A plot with metadata but no tree records is zero-filled, not dropped.
	plots := []inventory.PlotRecord{{PlotID: "7", InventoryYear: 2012}}

	metrics := PlotMetrics(nil, plots, inventory.SourceBulk)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}

	m := metrics[0]
	if m.BasalAreaPerAcre != 0 || m.TreesPerAcre != 0 || m.QuadraticMeanDiameter != 0 {
		t.Errorf("expected zero-filled aggregates, got %+v", m)
	}
	if m.InventoryYear != 2012 {
		t.Errorf("InventoryYear = %d, want 2012", m.InventoryYear)
	}
}

func TestPlotMetricsYearFilter(t *testing.T) {
	trees := []inventory.TreeRecord{
		{PlotID: "old", TPAUnadjusted: inventory.Float64(4.0), Diameter: inventory.Float64(12)},
	}
	plots := []inventory.PlotRecord{{PlotID: "old", InventoryYear: 2005}}

	// Valid tree data, but the 2005 measurement is below the floor.
	metrics := PlotMetrics(trees, plots, inventory.SourceBulk)
	if len(metrics) != 0 {
		t.Errorf("expected pre-2010 plot excluded, got %+v", metrics)
	}

	// A custom floor admits it.
	metrics = PlotMetrics(trees, plots, inventory.SourceBulk, WithYearFloor(2000))
	if len(metrics) != 1 {
		t.Errorf("expected plot retained with lower floor, got %d", len(metrics))
	}
}

func TestPlotMetricsTreeOnlyPlotFallsOutByYear(t *testing.T) {
	// Tree data with no plot metadata joins with year zero and is removed
	// by the year filter.
	trees := []inventory.TreeRecord{
		{PlotID: "orphan", TPAUnadjusted: inventory.Float64(6.0), Diameter: inventory.Float64(8)},
	}

	metrics := PlotMetrics(trees, nil, inventory.SourceDataMart)
	if len(metrics) != 0 {
		t.Errorf("expected orphan tree plot excluded, got %+v", metrics)
	}

	// With the floor at zero the outer join keeps it, zero-year and all.
	metrics = PlotMetrics(trees, nil, inventory.SourceDataMart, WithYearFloor(0))
	if len(metrics) != 1 {
		t.Fatalf("expected orphan retained with floor 0, got %d", len(metrics))
	}
	if metrics[0].InventoryYear != 0 {
		t.Errorf("InventoryYear = %d, want 0", metrics[0].InventoryYear)
	}
}

func TestPlotMetricsNullSafety(t *testing.T) {
	trees := []inventory.TreeRecord{
		// Missing expansion factor: ignored entirely.
		{PlotID: "1", TPAUnadjusted: nil, Diameter: inventory.Float64(20)},
		// Missing diameter: counts toward TPA, adds zero basal area.
		{PlotID: "1", TPAUnadjusted: inventory.Float64(5.0), Diameter: nil},
		// Complete record.
		{PlotID: "1", TPAUnadjusted: inventory.Float64(2.0), Diameter: inventory.Float64(10)},
	}
	plots := []inventory.PlotRecord{{PlotID: "1", InventoryYear: 2018}}

	metrics := PlotMetrics(trees, plots, inventory.SourceBulk)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}

	m := metrics[0]
	if !almostEqual(m.TreesPerAcre, 7.0) {
		t.Errorf("TPA = %v, want 7.0", m.TreesPerAcre)
	}
	wantBAPA := 2.0 * BasalAreaFactor * 100
	if !almostEqual(m.BasalAreaPerAcre, wantBAPA) {
		t.Errorf("BAPA = %v, want %v", m.BasalAreaPerAcre, wantBAPA)
	}
}

func TestPlotMetricsTPASummationIdentity(t *testing.T) {
	trees := []inventory.TreeRecord{
		{PlotID: "a", TPAUnadjusted: inventory.Float64(1.5), Diameter: inventory.Float64(6)},
		{PlotID: "a", TPAUnadjusted: inventory.Float64(2.5), Diameter: nil},
		{PlotID: "a", TPAUnadjusted: nil, Diameter: inventory.Float64(9)},
		{PlotID: "b", TPAUnadjusted: inventory.Float64(4.0), Diameter: inventory.Float64(14)},
	}
	plots := []inventory.PlotRecord{
		{PlotID: "a", InventoryYear: 2016},
		{PlotID: "b", InventoryYear: 2019},
	}

	metrics := PlotMetrics(trees, plots, inventory.SourceDataMart)

	byID := make(map[string]inventory.PlotMetric)
	for _, m := range metrics {
		byID[m.PlotID] = m
	}
	if !almostEqual(byID["a"].TreesPerAcre, 4.0) {
		t.Errorf("plot a TPA = %v, want 4.0", byID["a"].TreesPerAcre)
	}
	if !almostEqual(byID["b"].TreesPerAcre, 4.0) {
		t.Errorf("plot b TPA = %v, want 4.0", byID["b"].TreesPerAcre)
	}
}

func TestQMDInvariants(t *testing.T) {
	// QMD is zero exactly when TPA is zero, and never negative.
	if got := qmd(0, 0); got != 0 {
		t.Errorf("qmd(0, 0) = %v, want 0", got)
	}
	if got := qmd(1.5, 0); got != 0 {
		t.Errorf("qmd(1.5, 0) = %v, want 0", got)
	}
	if got := qmd(1.22715, 3.0); got < 0 {
		t.Errorf("qmd = %v, want non-negative", got)
	}
}

func TestPlotMetricsOuterJoinKeepsEveryPlot(t *testing.T) {
	// Every plot metadata row appears exactly once pre-filter.
	plots := make([]inventory.PlotRecord, 0, 20)
	for year := 2000; year < 2020; year++ {
		plots = append(plots, inventory.PlotRecord{
			PlotID:        inventory.PlotIDFromInt(int64(year)),
			InventoryYear: year,
		})
	}

	metrics := PlotMetrics(nil, plots, inventory.SourceBulk, WithYearFloor(0))
	if len(metrics) != len(plots) {
		t.Fatalf("expected %d metrics, got %d", len(plots), len(metrics))
	}

	seen := make(map[string]int)
	for _, m := range metrics {
		seen[m.PlotID]++
	}
	for _, p := range plots {
		if seen[p.PlotID] != 1 {
			t.Errorf("plot %s appears %d times, want 1", p.PlotID, seen[p.PlotID])
		}
	}
}

func TestYearFilterIdempotent(t *testing.T) {
	trees := []inventory.TreeRecord{
		{PlotID: "1", TPAUnadjusted: inventory.Float64(2.0), Diameter: inventory.Float64(10)},
	}
	plots := []inventory.PlotRecord{
		{PlotID: "1", InventoryYear: 2015},
		{PlotID: "2", InventoryYear: 2003},
	}

	once := PlotMetrics(trees, plots, inventory.SourceBulk)

	// Refilter the already-filtered output.
	kept := 0
	for _, m := range once {
		if m.InventoryYear >= 2010 {
			kept++
		}
	}
	if kept != len(once) {
		t.Errorf("reapplied filter changed output: %d of %d rows kept", kept, len(once))
	}
}

func TestPlotMetricsDeterministicOrder(t *testing.T) {
	plots := []inventory.PlotRecord{
		{PlotID: "c", InventoryYear: 2015},
		{PlotID: "a", InventoryYear: 2015},
		{PlotID: "b", InventoryYear: 2015},
	}

	metrics := PlotMetrics(nil, plots, inventory.SourceBulk)
	for i := 1; i < len(metrics); i++ {
		if metrics[i-1].PlotID >= metrics[i].PlotID {
			t.Fatalf("output not sorted by plot ID: %q before %q", metrics[i-1].PlotID, metrics[i].PlotID)
		}
	}
}
