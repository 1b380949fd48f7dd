package labparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lab-report-explainer/internal/domain"
)

const (
	// MaxPlausibleValue is the exclusive upper bound for test values and
	// range ends. Larger numbers are usually years, IDs or counts.
	MaxPlausibleValue = 10000

	// RangeWindow is how many lines after the starting line are searched for a range
	RangeWindow = 2
)

var (
	valuePattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(g/dL|mg/dL|ng/mL|mIU/L|%|mmol/L|µIU/mL|IU/L)?`)
	rangePattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:[-–—]|to)\s*(\d+\.?\d*)`)
)

// ExtractNumericValue returns the first number on line with 0 < v < 10000.
// A number carrying its own minus sign is negative and skipped; a hyphen
// after a digit, letter or colon is a separator, not a sign.
func ExtractNumericValue(line string) (float64, bool) {
	for _, m := range valuePattern.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[2], m[3]
		v, ok := parseNumber(line[start:end])
		if !ok {
			continue
		}
		if hasMinusSign(line, start) {
			v = -v
		}
		if v > 0 && v < MaxPlausibleValue {
			return v, true
		}
	}
	return 0, false
}

// ExtractNormalRange looks for a "<low> <sep> <high>" pair on lines[idx] and
// the following RangeWindow lines. Only the first pair on each line is
// considered; the first line whose pair satisfies 0 <= low < high < 10000 wins.
func ExtractNormalRange(lines []string, idx int) (domain.NormalRange, bool) {
	if idx < 0 {
		return domain.NormalRange{}, false
	}
	end := idx + RangeWindow + 1
	if end > len(lines) {
		end = len(lines)
	}

	for i := idx; i < end; i++ {
		m := rangePattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		low, okLow := parseNumber(m[1])
		high, okHigh := parseNumber(m[2])
		if !okLow || !okHigh {
			continue
		}
		if low < high && low >= 0 && high < MaxPlausibleValue {
			return domain.NormalRange{Low: low, High: high}, true
		}
	}
	return domain.NormalRange{}, false
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasMinusSign reports whether the number starting at pos carries its own
// minus sign. The '-' counts only at line start or after whitespace, '(' or
// '='; glued to a name, a colon or another number it is a separator.
func hasMinusSign(line string, pos int) bool {
	if pos == 0 || line[pos-1] != '-' {
		return false
	}
	if pos == 1 {
		return true
	}
	switch line[pos-2] {
	case ' ', '\t', '(', '=':
		return true
	}
	return false
}
