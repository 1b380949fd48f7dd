package labparse

import (
	"strings"

	"github.com/lab-report-explainer/internal/domain"
)

// matcher holds the lowercase search terms of one reference
type matcher struct {
	ref   domain.TestReference
	terms []string
}

func newMatcher(ref domain.TestReference) matcher {
	terms := make([]string, 0, len(ref.Aliases)+1)
	for _, t := range append([]string{ref.Name}, ref.Aliases...) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	return matcher{ref: ref, terms: terms}
}

// matches reports whether line mentions the reference by name or alias
func (m matcher) matches(line string) bool {
	lower := strings.ToLower(line)
	for _, t := range m.terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// MatchesLine reports whether line contains the canonical name or any alias
// of ref, ignoring case.
func MatchesLine(line string, ref domain.TestReference) bool {
	return newMatcher(ref).matches(line)
}
