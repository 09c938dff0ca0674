package inventory

import (
	"strconv"
	"strings"
)

// NormalizePlotID coerces a native plot identifier to the single common
// representation used across sources. The indexed source reports textual
// control numbers while the bulk source reports numeric ones; both must
// compare equal after normalization.
//
// Numeric identifiers lose any insignificant formatting (leading zeros,
// trailing ".0" from float-typed columns); everything else is trimmed
// as-is.
func NormalizePlotID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		return ""
	}

	// Integer-valued IDs round-trip through int64 to strip formatting.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}

	// Bulk CSV columns are sometimes float-typed ("40073521010.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}

	return s
}

// PlotIDFromInt formats a numeric native identifier as a normalized plot ID.
func PlotIDFromInt(id int64) string {
	return strconv.FormatInt(id, 10)
}
