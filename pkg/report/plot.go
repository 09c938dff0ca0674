package report

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

const histogramBins = 16

// TPAHistogram renders overlaid per-source histograms of trees per acre
// and saves them as a PNG at path.
func TPAHistogram(path string, rows []inventory.ComparisonRow) error {
	bySource := make(map[inventory.SourceID]plotter.Values)
	for _, r := range rows {
		bySource[r.Source] = append(bySource[r.Source], r.TreesPerAcre)
	}
	if len(bySource) == 0 {
		return errors.NewValidationError("rows", "", "no comparison rows to plot")
	}

	p := plot.New()
	p.Title.Text = "Trees per acre by source"
	p.X.Label.Text = "TPA"
	p.Y.Label.Text = "Density"

	for i, id := range sortedSourceIDs(bySource) {
		h, err := plotter.NewHist(bySource[id], histogramBins)
		if err != nil {
			return errors.WrapIO("plot", path, err)
		}
		h.Normalize(1)
		h.FillColor = nil
		h.LineStyle.Color = plotutil.Color(i)
		h.LineStyle.Width = vg.Points(1.5)
		p.Add(h)
		p.Legend.Add(id.String(), h)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.WrapIO("save plot", path, err)
	}
	return nil
}

// TPAByYearScatter renders trees per acre against inventory year, one
// glyph color per source, and saves the result as a PNG at path.
func TPAByYearScatter(path string, metrics map[inventory.SourceID][]inventory.PlotMetric) error {
	if len(metrics) == 0 {
		return errors.NewValidationError("metrics", "", "no plot metrics to plot")
	}

	p := plot.New()
	p.Title.Text = "Trees per acre by inventory year"
	p.X.Label.Text = "Inventory year"
	p.Y.Label.Text = "TPA"

	for i, id := range sortedSourceIDs(metrics) {
		pts := make(plotter.XYs, 0, len(metrics[id]))
		for _, m := range metrics[id] {
			pts = append(pts, plotter.XY{X: float64(m.InventoryYear), Y: m.TreesPerAcre})
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.WrapIO("plot", path, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(id.String(), s)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.WrapIO("save plot", path, err)
	}
	return nil
}

func sortedSourceIDs[V any](m map[inventory.SourceID]V) []inventory.SourceID {
	ids := make([]inventory.SourceID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
