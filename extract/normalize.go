package extract

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse is returned when a raw string holds no parsable number
var ErrParse = errors.New("unable to parse number")

// Normalize parses a locale-ambiguous numeric string into a float.
//
// Only digits, '.' and ',' are kept. Separator policy:
//   - both present: the later one is the decimal mark, the other is removed
//   - a separator repeated with no other separator present is a thousands separator
//   - a single ',' is the decimal mark
//   - a single '.' followed by exactly 3 digits is a thousands separator,
//     otherwise it is the decimal mark
func Normalize(raw string) (float64, error) {
	var b strings.Builder

	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()

	var (
		lastDot   = strings.LastIndexByte(cleaned, '.')
		lastComma = strings.LastIndexByte(cleaned, ',')
	)

	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalMark, thousands := ",", "."
		if lastDot > lastComma {
			decimalMark, thousands = ".", ","
		}

		cleaned = strings.ReplaceAll(cleaned, thousands, "")
		cleaned = strings.Replace(cleaned, decimalMark, ".", 1)
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")

			break
		}

		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 || len(cleaned)-lastDot-1 == 3 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	if cleaned == "" || cleaned == "." {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	return value, nil
}

// Canonical formats the value in decimal-point form, such that
// Normalize(Canonical(v)) == v for any non-negative v
func Canonical(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)

	// a 3-digit fraction would read as a thousands group
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 == 3 {
		s += "0"
	}

	return s
}
