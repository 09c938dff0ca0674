package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// WriteMetricsCSV writes per-plot metrics for one source as CSV.
func WriteMetricsCSV(w io.Writer, metrics []inventory.PlotMetric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plot_id", "bapa", "tpa", "qmd", "invyr", "source"}); err != nil {
		return err
	}
	for _, m := range metrics {
		record := []string{
			m.PlotID,
			formatFloat(m.BasalAreaPerAcre),
			formatFloat(m.TreesPerAcre),
			formatFloat(m.QuadraticMeanDiameter),
			strconv.Itoa(m.InventoryYear),
			m.Source.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes the cross-source comparison rows as CSV.
func WriteComparisonCSV(w io.Writer, rows []inventory.ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plot_id", "tpa", "source"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.PlotID, formatFloat(r.TreesPerAcre), r.Source.String()}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
