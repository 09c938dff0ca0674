package inventory

// TreeRecord is one tree measurement from an inventory plot. Records are
// immutable once ingested. TPAUnadjusted and Diameter are pointers because
// sources report missing measurements; a nil value contributes zero to
// plot aggregates rather than poisoning them.
type TreeRecord struct {
	// PlotID links the tree to its PlotRecord.
	PlotID string

	// TPAUnadjusted is the unadjusted trees-per-acre expansion factor.
	TPAUnadjusted *float64

	// Diameter is the stem diameter in inches.
	Diameter *float64
}

// PlotRecord is one inventory plot measurement.
type PlotRecord struct {
	// PlotID uniquely identifies the plot measurement.
	PlotID string

	// InventoryYear is the year the plot was measured.
	InventoryYear int
}

// PlotMetric is a derived per-plot summary. It is created by the
// aggregator and never mutated afterwards.
type PlotMetric struct {
	PlotID string

	// BasalAreaPerAcre (BAPA) in square feet per acre.
	BasalAreaPerAcre float64

	// TreesPerAcre (TPA).
	TreesPerAcre float64

	// QuadraticMeanDiameter (QMD) in inches. Exactly zero when
	// TreesPerAcre is zero; the division that defines it is otherwise
	// undefined.
	QuadraticMeanDiameter float64

	InventoryYear int

	Source SourceID
}

// ComparisonRow is the narrow projection of PlotMetric used for
// distributional comparison across sources.
type ComparisonRow struct {
	PlotID       string
	TreesPerAcre float64
	Source       SourceID
}

// Comparison projects the metric down to a ComparisonRow, normalizing the
// plot ID to the common textual form.
func (m PlotMetric) Comparison() ComparisonRow {
	return ComparisonRow{
		PlotID:       NormalizePlotID(m.PlotID),
		TreesPerAcre: m.TreesPerAcre,
		Source:       m.Source,
	}
}

// Float64 returns a pointer to v. Convenience for building records with
// optional measurements.
func Float64(v float64) *float64 {
	return &v
}
