package inventory

import "testing"

func TestSourceIDValidity(t *testing.T) {
	for _, id := range SourceIDs() {
		if !id.IsValid() {
			t.Errorf("SourceID %q should be valid", id)
		}
	}
	if SourceID("tidyfia").IsValid() {
		t.Error("unknown source ID should not be valid")
	}
}

func TestNormalizePlotID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain numeric", "40073521010", "40073521010"},
		{"leading zeros", "0040073521010", "40073521010"},
		{"float typed column", "40073521010.0", "40073521010"},
		{"whitespace", "  40073521010 ", "40073521010"},
		{"textual passthrough", "PNW-0173", "PNW-0173"},
		{"empty", "", ""},
		{"fractional stays textual", "12.5", "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePlotID(tt.in); got != tt.want {
				t.Errorf("NormalizePlotID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizationMakesSourcesComparable(t *testing.T) {
	// The indexed source reports textual control numbers, the bulk source
	// numeric ones. After normalization both must compare equal.
	textual := "40073521010"
	numeric := PlotIDFromInt(40073521010)

	if NormalizePlotID(textual) != NormalizePlotID(numeric) {
		t.Errorf("IDs %q and %q should normalize to the same form", textual, numeric)
	}
}

func TestPlotMetricComparison(t *testing.T) {
	m := PlotMetric{
		PlotID:                "0012",
		BasalAreaPerAcre:      88.1,
		TreesPerAcre:          120,
		QuadraticMeanDiameter: 11.6,
		InventoryYear:         2017,
		Source:                SourceBulk,
	}

	row := m.Comparison()
	if row.PlotID != "12" {
		t.Errorf("Comparison().PlotID = %q, want normalized %q", row.PlotID, "12")
	}
	if row.TreesPerAcre != 120 {
		t.Errorf("Comparison().TreesPerAcre = %v, want 120", row.TreesPerAcre)
	}
	if row.Source != SourceBulk {
		t.Errorf("Comparison().Source = %q, want %q", row.Source, SourceBulk)
	}
}

func TestTables(t *testing.T) {
	tables := NewTables()
	tables.SetTrees([]TreeRecord{
		{PlotID: "1", TPAUnadjusted: Float64(6.018), Diameter: Float64(10)},
	})
	tables.SetPlots([]PlotRecord{
		{PlotID: "1", InventoryYear: 2015},
		{PlotID: "2", InventoryYear: 2012},
	})

	if got := tables.Len(TableTree); got != 1 {
		t.Errorf("Len(tree) = %d, want 1", got)
	}
	if got := tables.Len(TablePlot); got != 2 {
		t.Errorf("Len(plot) = %d, want 2", got)
	}
	if got := tables.Len(TableName("cond")); got != 0 {
		t.Errorf("Len(unknown) = %d, want 0", got)
	}
}
