package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// romanCoding is the classical subtractive-pair symbol table, largest
// value first.
var romanCoding = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman renders num in upper-case classical Roman notation. Classical
// notation has no representation for zero, negatives, values of 4000 and
// above, or fractions; those fall back to the plain decimal string.
func Roman(num float64) string {
	if num <= 0 || num >= 4000 || math.Trunc(num) != num {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}

	remaining := int(num)
	var sb strings.Builder
	for _, c := range romanCoding {
		for remaining >= c.value {
			sb.WriteString(c.symbol)
			remaining -= c.value
		}
	}
	return sb.String()
}

// FormatSeriesIndex renders a series index for display. An empty value is
// treated as 1. Values that do not parse as a number are returned
// unchanged, so malformed metadata never breaks the transform. Whole
// numbers render as Roman numerals when useRoman is set, plain integers
// otherwise; fractional indices (e.g. "2.5") use format, which defaults to
// "%.2f".
func FormatSeriesIndex(value, format string, useRoman bool) string {
	if value == "" {
		value = "1"
	}
	if format == "" {
		format = "%.2f"
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}

	if math.Trunc(num) == num {
		if useRoman {
			return Roman(math.Trunc(num))
		}
		return strconv.Itoa(int(num))
	}
	return fmt.Sprintf(format, num)
}
