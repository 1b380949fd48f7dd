package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lab-report-explainer/internal/domain"
)

func TestStatusClassifier_Classify(t *testing.T) {
	hb := domain.NormalRange{Low: 12.0, High: 17.5}

	tests := []struct {
		name  string
		value float64
		rng   domain.NormalRange
		want  domain.TestStatus
	}{
		{"at low boundary", 12.0, hb, domain.StatusNormal},
		{"just below low", 11.9, hb, domain.StatusBorderline},
		{"inside low margin", 11.46, hb, domain.StatusBorderline},
		{"below margin", 11.0, hb, domain.StatusLow},
		{"inside", 14.2, hb, domain.StatusNormal},
		{"at high boundary", 17.5, hb, domain.StatusNormal},
		{"just above high", 18.0, hb, domain.StatusBorderline},
		{"above margin", 18.1, hb, domain.StatusHigh},
		{"far low", 9.2, domain.NormalRange{Low: 13.5, High: 17.5}, domain.StatusLow},
		{"zero-based range borderline", 210, domain.NormalRange{Low: 0, High: 200}, domain.StatusBorderline},
		{"zero-based range high", 221, domain.NormalRange{Low: 0, High: 200}, domain.StatusHigh},
	}

	c := NewStatusClassifier(DefaultBorderlineMargin)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.value, tt.rng))
		})
	}
}

func TestStatusClassifier_Margin(t *testing.T) {
	assert.Equal(t, DefaultBorderlineMargin, NewStatusClassifier(0).MarginFraction())
	assert.Equal(t, DefaultBorderlineMargin, NewStatusClassifier(-1).MarginFraction())

	wide := NewStatusClassifier(0.5)
	rng := domain.NormalRange{Low: 10, High: 20}
	assert.Equal(t, domain.StatusBorderline, wide.Classify(6, rng))
	assert.Equal(t, domain.StatusLow, wide.Classify(4.9, rng))
	assert.Equal(t, domain.StatusBorderline, wide.Classify(25, rng))
}
