// Package countparse turns follower counts the way platforms display
// them ("1.2K", "12,345", "1 234", "3,4 M") into integers.
package countparse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countRegex = regexp.MustCompile(`(?i)([0-9][0-9.,]*(?: [0-9]{3})*)\s*(?:([KMB])\b)?`)

var multipliers = map[string]float64{
	"":  1,
	"K": 1_000,
	"M": 1_000_000,
	"B": 1_000_000_000,
}

// Count extracts the first numeric token from text and parses it as a
// non-negative count. Thousands separators (comma, dot, space,
// non-breaking space) and K/M/B shorthand are tolerated.
func Count(text string) (int64, error) {
	normalized := strings.NewReplacer(" ", " ", " ", " ").Replace(text)

	m := countRegex.FindStringSubmatch(normalized)
	if m == nil {
		return 0, fmt.Errorf("no numeric token in %q", strings.TrimSpace(text))
	}

	num := strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
	num = strings.Trim(num, ".,")
	suffix := strings.ToUpper(m[2])

	value, err := parseNumber(num, suffix != "")
	if err != nil {
		return 0, fmt.Errorf("unparsable count %q: %w", strings.TrimSpace(text), err)
	}

	scaled := value * multipliers[suffix]
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-6 {
		return 0, fmt.Errorf("fractional count %q", strings.TrimSpace(text))
	}
	return int64(rounded), nil
}

// parseNumber resolves separator ambiguity: "12,345" and "1.234" are
// grouped thousands, "1.2" and "3,4" are decimals (only meaningful
// under a K/M/B suffix).
func parseNumber(num string, allowDecimal bool) (float64, error) {
	dot := strings.LastIndexByte(num, '.')
	comma := strings.LastIndexByte(num, ',')

	decimalSep := byte(0)
	if dot >= 0 && comma >= 0 {
		// both present: the rightmost one is the decimal point
		if dot > comma {
			decimalSep = '.'
		} else {
			decimalSep = ','
		}
	} else if dot >= 0 || comma >= 0 {
		sep := byte('.')
		if comma >= 0 {
			sep = ','
		}
		groups := strings.Split(num, string(sep))
		if grouped(groups) {
			// every group after the first has 3 digits: thousands
			decimalSep = 0
		} else if len(groups) == 2 && allowDecimal {
			decimalSep = sep
		} else {
			return 0, fmt.Errorf("ambiguous separators in %q", num)
		}
	}

	var b strings.Builder
	for i := 0; i < len(num); i++ {
		c := num[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == decimalSep:
			b.WriteByte('.')
		}
	}
	return strconv.ParseFloat(b.String(), 64)
}

func grouped(groups []string) bool {
	if len(groups) < 2 {
		return true
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
