package bulk

import (
	"strconv"
	"strings"

	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// plotRow is the bulk source's native plot record. CN identifies one
// measurement; Plot is the physical plot number, stable across cycles,
// used when keeping only the most recent cycle.
type plotRow struct {
	CN      string
	Plot    int64
	InvYear int
	Lat     float64
	Lon     float64
}

// Native bulk CSV column names. These never leak past this package.
const (
	colPlotCN   = "PLT_CN"
	colTPAUnadj = "TPA_UNADJ"
	colDiameter = "DIA"
	colCN       = "CN"
	colPlot     = "PLOT"
	colInvYear  = "INVYR"
	colLat      = "LAT"
	colLon      = "LON"
)

func indexColumns(head []string, names ...string) (map[string]int, error) {
	byName := make(map[string]int, len(head))
	for i, name := range head {
		byName[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	out := make(map[string]int, len(names))
	for _, name := range names {
		idx, ok := byName[name]
		if !ok {
			return nil, errors.NewValidationError(name, nil, "required column missing from bulk table")
		}
		out[name] = idx
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isNA(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "NULL":
		return true
	}
	return false
}

// treesFromCSV converts a bulk tree table, header row included, to
// canonical records.
func treesFromCSV(records [][]string) ([]inventory.TreeRecord, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("", nil, "tree table is empty (no header row)")
	}

	cols, err := indexColumns(records[0], colPlotCN, colTPAUnadj, colDiameter)
	if err != nil {
		return nil, err
	}

	trees := make([]inventory.TreeRecord, 0, len(records)-1)
	for i, row := range records[1:] {
		tree := inventory.TreeRecord{
			PlotID: inventory.NormalizePlotID(cell(row, cols[colPlotCN])),
		}

		if s := cell(row, cols[colTPAUnadj]); !isNA(s) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &errors.ParseError{Format: "csv", File: "TREE", Line: i + 2,
					Message: "bad " + colTPAUnadj + " value", Err: err}
			}
			tree.TPAUnadjusted = &f
		}
		if s := cell(row, cols[colDiameter]); !isNA(s) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &errors.ParseError{Format: "csv", File: "TREE", Line: i + 2,
					Message: "bad " + colDiameter + " value", Err: err}
			}
			tree.Diameter = &f
		}

		trees = append(trees, tree)
	}
	return trees, nil
}

// plotsFromCSV converts a bulk plot table, header row included, to native
// plot rows. Rows without coordinates are dropped here: they can never
// survive the clip and would only poison the containment test.
func plotsFromCSV(records [][]string) ([]plotRow, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("", nil, "plot table is empty (no header row)")
	}

	cols, err := indexColumns(records[0], colCN, colPlot, colInvYear, colLat, colLon)
	if err != nil {
		return nil, err
	}

	plots := make([]plotRow, 0, len(records)-1)
	for i, row := range records[1:] {
		latStr, lonStr := cell(row, cols[colLat]), cell(row, cols[colLon])
		if isNA(latStr) || isNA(lonStr) {
			continue
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: "PLOT", Line: i + 2,
				Message: "bad " + colLat + " value", Err: err}
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: "PLOT", Line: i + 2,
				Message: "bad " + colLon + " value", Err: err}
		}

		p := plotRow{
			CN:  inventory.NormalizePlotID(cell(row, cols[colCN])),
			Lat: lat,
			Lon: lon,
		}
		if s := cell(row, cols[colPlot]); !isNA(s) {
			p.Plot, err = strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, &errors.ParseError{Format: "csv", File: "PLOT", Line: i + 2,
					Message: "bad " + colPlot + " value", Err: err}
			}
		}
		if s := cell(row, cols[colInvYear]); !isNA(s) {
			p.InvYear, err = strconv.Atoi(s)
			if err != nil {
				return nil, &errors.ParseError{Format: "csv", File: "PLOT", Line: i + 2,
					Message: "bad " + colInvYear + " value", Err: err}
			}
		}

		plots = append(plots, p)
	}
	return plots, nil
}
