package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces a cell to float64. Empty or non-numeric cells, including ones
// with thousands separators, become NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// NormalizeColumn trims and lower-cases a header name.
func NormalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
