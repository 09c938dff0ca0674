// Package reconcile normalizes per-source plot metrics into one combined
// comparison table. Each source produces PlotMetric collections against
// the canonical schema; this package projects them down to ComparisonRow,
// tags every row with its source, and concatenates the results so the two
// access paths can be compared distributionally.
package reconcile

import (
	"sort"

	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// Result holds the reconciled output: the combined comparison rows plus
// the full per-source metric collections, kept unreduced for richer
// multi-attribute comparison (BAPA, TPA, QMD against inventory year).
type Result struct {
	Rows    []inventory.ComparisonRow
	Metrics map[inventory.SourceID][]inventory.PlotMetric
}

// Sources reconciles the given per-source metric collections. Every row in
// the output carries the source tag of the collection it came from; plot
// IDs are normalized to the common textual form. The output length always
// equals the sum of the input lengths, whether the sources' plot ID sets
// overlap or not.
//
// Rows are ordered by source then plot ID; downstream consumers treat the
// order as irrelevant, but determinism keeps output diffable.
func Sources(metrics map[inventory.SourceID][]inventory.PlotMetric) *Result {
	ids := make([]inventory.SourceID, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := 0
	for _, id := range ids {
		total += len(metrics[id])
	}

	rows := make([]inventory.ComparisonRow, 0, total)
	for _, id := range ids {
		for _, m := range metrics[id] {
			row := m.Comparison()
			row.Source = id // the collection's tag wins over the row's own
			rows = append(rows, row)
		}
	}

	return &Result{Rows: rows, Metrics: metrics}
}

// Tag stamps every metric in the collection with the given source and
// normalizes its plot ID. Source adapters that build metrics without a
// tag use this before handing them to Sources.
func Tag(metrics []inventory.PlotMetric, source inventory.SourceID) []inventory.PlotMetric {
	tagged := make([]inventory.PlotMetric, len(metrics))
	for i, m := range metrics {
		m.PlotID = inventory.NormalizePlotID(m.PlotID)
		m.Source = source
		tagged[i] = m
	}
	return tagged
}
