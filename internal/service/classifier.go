package service

import (
	"github.com/lab-report-explainer/internal/domain"
)

// DefaultBorderlineMargin is the fraction of the range span tolerated on
// either side of a boundary before a value counts as low or high
const DefaultBorderlineMargin = 0.1

// StatusClassifier grades a patient value against a normal range
type StatusClassifier struct {
	marginFraction float64
}

// NewStatusClassifier creates a classifier. A non-positive fraction selects
// DefaultBorderlineMargin.
func NewStatusClassifier(marginFraction float64) *StatusClassifier {
	if marginFraction <= 0 {
		marginFraction = DefaultBorderlineMargin
	}
	return &StatusClassifier{marginFraction: marginFraction}
}

// Classify returns normal inside [low, high], borderline within the margin
// band outside either boundary, and low or high beyond it.
func (c *StatusClassifier) Classify(value float64, rng domain.NormalRange) domain.TestStatus {
	margin := (rng.High - rng.Low) * c.marginFraction

	switch {
	case value < rng.Low:
		if value >= rng.Low-margin {
			return domain.StatusBorderline
		}
		return domain.StatusLow
	case value > rng.High:
		if value <= rng.High+margin {
			return domain.StatusBorderline
		}
		return domain.StatusHigh
	default:
		return domain.StatusNormal
	}
}

// MarginFraction returns the configured borderline fraction
func (c *StatusClassifier) MarginFraction() float64 {
	return c.marginFraction
}
