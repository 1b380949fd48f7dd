// Package labparse recovers lab test results from free-form report text
// using line proximity heuristics.
package labparse

import (
	"github.com/lab-report-explainer/internal/domain"
)

// ValueWindow is how many lines after a name match are searched for a value
const ValueWindow = 2

// References supplies the ordered reference table the parser scans for
type References interface {
	All() []domain.TestReference
}

// Parser extracts ParsedTests from report text. It holds no mutable state and
// is safe for concurrent use.
type Parser struct {
	matchers []matcher
}

// NewParser creates a parser over the references in their defined order
func NewParser(refs References) *Parser {
	all := refs.All()
	p := &Parser{matchers: make([]matcher, 0, len(all))}
	for _, ref := range all {
		p.matchers = append(p.matchers, newMatcher(ref))
	}
	return p
}

// Parse returns at most one result per reference, in reference order.
// Text with no recognizable tests yields an empty slice.
func (p *Parser) Parse(rawText string) []domain.ParsedTest {
	lines := Lines(rawText)
	results := make([]domain.ParsedTest, 0)

	for _, m := range p.matchers {
		if test, ok := findInLines(lines, m); ok {
			results = append(results, test)
		}
	}
	return results
}

func findInLines(lines []string, m matcher) (domain.ParsedTest, bool) {
	for i, line := range lines {
		if !m.matches(line) {
			continue
		}

		if value, ok := ExtractNumericValue(line); ok {
			rng, found := ExtractNormalRange(lines, i)
			if !found {
				rng = m.ref.NormalRange
			}
			return newParsedTest(m.ref, value, rng, line), true
		}

		for j := 1; j <= ValueWindow && i+j < len(lines); j++ {
			value, ok := ExtractNumericValue(lines[i+j])
			if !ok {
				continue
			}
			rng, found := ExtractNormalRange(lines, i+j)
			if !found {
				rng, found = ExtractNormalRange(lines, i)
			}
			if !found {
				rng = m.ref.NormalRange
			}
			return newParsedTest(m.ref, value, rng, line+" "+lines[i+j]), true
		}
	}
	return domain.ParsedTest{}, false
}

func newParsedTest(ref domain.TestReference, value float64, rng domain.NormalRange, raw string) domain.ParsedTest {
	return domain.ParsedTest{
		TestName:     ref.Name,
		PatientValue: value,
		Unit:         ref.Unit,
		NormalRange:  rng,
		RawText:      raw,
	}
}
