package bulk

import (
	"github.com/SilviaTerra/BiometricsBits/pkg/aoi"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// clip reduces state-wide plot rows to those inside the region polygon.
func clip(plots []plotRow, region *aoi.Region) []plotRow {
	clipped := make([]plotRow, 0, len(plots))
	for _, p := range plots {
		if region.ContainsLonLat(p.Lon, p.Lat) {
			clipped = append(clipped, p)
		}
	}
	return clipped
}

// mostRecent keeps, for each physical plot number, only the rows from its
// latest inventory year. Plots without a number (Plot == 0) are kept as-is.
func mostRecent(plots []plotRow) []plotRow {
	latest := make(map[int64]int)
	for _, p := range plots {
		if p.Plot == 0 {
			continue
		}
		if year, ok := latest[p.Plot]; !ok || p.InvYear > year {
			latest[p.Plot] = p.InvYear
		}
	}

	kept := make([]plotRow, 0, len(plots))
	for _, p := range plots {
		if p.Plot != 0 && p.InvYear != latest[p.Plot] {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// treesForPlots filters tree records to those whose plot survived the clip.
func treesForPlots(trees []inventory.TreeRecord, plots []plotRow) []inventory.TreeRecord {
	keep := make(map[string]struct{}, len(plots))
	for _, p := range plots {
		keep[p.CN] = struct{}{}
	}

	kept := make([]inventory.TreeRecord, 0, len(trees))
	for _, t := range trees {
		if _, ok := keep[t.PlotID]; ok {
			kept = append(kept, t)
		}
	}
	return kept
}

// toPlotRecords converts native plot rows to canonical records.
func toPlotRecords(plots []plotRow) []inventory.PlotRecord {
	records := make([]inventory.PlotRecord, 0, len(plots))
	for _, p := range plots {
		records = append(records, inventory.PlotRecord{
			PlotID:        p.CN,
			InventoryYear: p.InvYear,
		})
	}
	return records
}
