// Package report renders the reconciled comparison for human consumption:
// a per-source summary table, CSV exports, and comparison plots. It only
// consumes explicit data arguments; no session state is involved.
package report

import (
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// SourceSummary aggregates one source's plot metrics for display.
type SourceSummary struct {
	Source   inventory.SourceID
	Plots    int
	MeanTPA  float64
	MeanBAPA float64
	MeanQMD  float64
}

// Summarize computes per-source summaries, ordered by source ID.
func Summarize(metrics map[inventory.SourceID][]inventory.PlotMetric) []SourceSummary {
	ids := make([]inventory.SourceID, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	summaries := make([]SourceSummary, 0, len(ids))
	for _, id := range ids {
		s := SourceSummary{Source: id, Plots: len(metrics[id])}
		for _, m := range metrics[id] {
			s.MeanTPA += m.TreesPerAcre
			s.MeanBAPA += m.BasalAreaPerAcre
			s.MeanQMD += m.QuadraticMeanDiameter
		}
		if s.Plots > 0 {
			s.MeanTPA /= float64(s.Plots)
			s.MeanBAPA /= float64(s.Plots)
			s.MeanQMD /= float64(s.Plots)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// WriteSummaryTable renders the per-source summaries as a console table.
func WriteSummaryTable(w io.Writer, summaries []SourceSummary) error {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewTable(w)
	table.Header("Source", "Plots", "Mean TPA", "Mean BAPA", "Mean QMD")
	for _, s := range summaries {
		if err := table.Append(
			s.Source.String(),
			p.Sprintf("%d", s.Plots),
			p.Sprintf("%.1f", s.MeanTPA),
			p.Sprintf("%.1f", s.MeanBAPA),
			p.Sprintf("%.1f", s.MeanQMD),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
