package datamart

import (
	"strconv"
	"strings"

	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// Native DataMart column names. These never leak past this package.
const (
	colPlotCN   = "PLT_CN"
	colTPAUnadj = "TPA_UNADJ"
	colDiameter = "DIA"
	colCN       = "CN"
	colInvYear  = "INVYR"
)

// header maps column names to indices, case-insensitively.
type header map[string]int

func headerOf(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return h
}

// require returns the index of a column, or a ValidationError naming the
// missing column. A missing column is a contract violation and aborts the
// pipeline; it is never defaulted.
func (h header) require(name string) (int, error) {
	idx, ok := h[name]
	if !ok {
		return 0, errors.NewValidationError(name, nil, "required column missing from fetched table")
	}
	return idx, nil
}

// cell returns the trimmed value at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// nullableFloat parses a measurement value. Empty and NA-style markers are
// missing values, not errors.
func nullableFloat(s string) (*float64, error) {
	switch strings.ToUpper(s) {
	case "", "NA", "NULL":
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// TreesFromCSV converts a fetched tree table to canonical records. The
// input includes the header row.
func TreesFromCSV(records [][]string) ([]inventory.TreeRecord, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("", nil, "tree table is empty (no header row)")
	}

	h := headerOf(records[0])
	plotIdx, err := h.require(colPlotCN)
	if err != nil {
		return nil, err
	}
	tpaIdx, err := h.require(colTPAUnadj)
	if err != nil {
		return nil, err
	}
	diaIdx, err := h.require(colDiameter)
	if err != nil {
		return nil, err
	}

	trees := make([]inventory.TreeRecord, 0, len(records)-1)
	for i, row := range records[1:] {
		tpa, err := nullableFloat(cell(row, tpaIdx))
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: "tree", Line: i + 2,
				Message: "bad " + colTPAUnadj + " value", Err: err}
		}
		dia, err := nullableFloat(cell(row, diaIdx))
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: "tree", Line: i + 2,
				Message: "bad " + colDiameter + " value", Err: err}
		}

		trees = append(trees, inventory.TreeRecord{
			PlotID:        inventory.NormalizePlotID(cell(row, plotIdx)),
			TPAUnadjusted: tpa,
			Diameter:      dia,
		})
	}
	return trees, nil
}

// PlotsFromCSV converts a fetched plot table to canonical records.
func PlotsFromCSV(records [][]string) ([]inventory.PlotRecord, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("", nil, "plot table is empty (no header row)")
	}

	h := headerOf(records[0])
	cnIdx, err := h.require(colCN)
	if err != nil {
		return nil, err
	}
	yearIdx, err := h.require(colInvYear)
	if err != nil {
		return nil, err
	}

	plots := make([]inventory.PlotRecord, 0, len(records)-1)
	for i, row := range records[1:] {
		year := 0
		if s := cell(row, yearIdx); s != "" && !strings.EqualFold(s, "NA") {
			year, err = strconv.Atoi(s)
			if err != nil {
				return nil, &errors.ParseError{Format: "csv", File: "plot", Line: i + 2,
					Message: "bad " + colInvYear + " value", Err: err}
			}
		}

		plots = append(plots, inventory.PlotRecord{
			PlotID:        inventory.NormalizePlotID(cell(row, cnIdx)),
			InventoryYear: year,
		})
	}
	return plots, nil
}
