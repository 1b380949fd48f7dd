package labparse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lab-report-explainer/internal/domain"
)

func TestExtractNumericValue(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantValue float64
		wantOK    bool
	}{
		{"plain decimal", "9.2", 9.2, true},
		{"with unit", "Hemoglobin 9.2 g/dL", 9.2, true},
		{"unit without space", "Glucose 98mg/dL", 98, true},
		{"labelled result", "Result: 9.2", 9.2, true},
		{"digits inside a word come first", "HbA1c 6.1 %", 1, true},
		{"percent unit", "Saturation 97 %", 97, true},
		{"micro unit", "Insulin 12.4 µIU/mL", 12.4, true},
		{"zero skipped", "0 0.0 5.5", 5.5, true},
		{"negative skipped", "Value -5 then 7", 7, true},
		{"leading negative skipped", "-3.2 g/dL 4.1", 4.1, true},
		{"range hyphen is not a sign", "(13.5-17.5)", 13.5, true},
		{"hyphen after name is a separator", "TSH-2.5 mIU/L", 2.5, true},
		{"hyphen after abbreviation", "Hb-9.2 g/dL", 9.2, true},
		{"hyphen after colon", "Hemoglobin:-9.2", 9.2, true},
		{"sign after equals", "delta =-4 then 6", 6, true},
		{"sign after parenthesis", "(-1.5) 3", 3, true},
		{"too large skipped", "Sample 12000 value 45", 45, true},
		{"upper bound exclusive", "ID 10000", 0, false},
		{"trailing dot", "Creatinine 1. mg/dL", 1, true},
		{"no digits", "Hemoglobin pending", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNumericValue(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantValue, got, 1e-9)
			}
		})
	}
}

func TestExtractNormalRange(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		idx    int
		want   domain.NormalRange
		wantOK bool
	}{
		{
			name:   "hyphen",
			lines:  []string{"13.5-17.5"},
			want:   domain.NormalRange{Low: 13.5, High: 17.5},
			wantOK: true,
		},
		{
			name:   "en dash with spaces",
			lines:  []string{"13.5 – 17.5"},
			want:   domain.NormalRange{Low: 13.5, High: 17.5},
			wantOK: true,
		},
		{
			name:   "em dash",
			lines:  []string{"(70—100)"},
			want:   domain.NormalRange{Low: 70, High: 100},
			wantOK: true,
		},
		{
			name:   "word to",
			lines:  []string{"Normal: 13.5 to 17.5"},
			want:   domain.NormalRange{Low: 13.5, High: 17.5},
			wantOK: true,
		},
		{
			name:   "word to uppercase",
			lines:  []string{"Reference 0.4 TO 4.0 mIU/L"},
			want:   domain.NormalRange{Low: 0.4, High: 4.0},
			wantOK: true,
		},
		{
			name:   "inverted pair rejected",
			lines:  []string{"17.5-13.5"},
			wantOK: false,
		},
		{
			name:   "equal pair rejected",
			lines:  []string{"5-5"},
			wantOK: false,
		},
		{
			name:   "upper bound rejected",
			lines:  []string{"100-20000"},
			wantOK: false,
		},
		{
			name:   "found on second following line",
			lines:  []string{"Hemoglobin", "9.2 g/dL", "Ref 12.0 - 17.5"},
			want:   domain.NormalRange{Low: 12.0, High: 17.5},
			wantOK: true,
		},
		{
			name:   "beyond window",
			lines:  []string{"Hemoglobin", "9.2", "g/dL", "12.0 - 17.5"},
			wantOK: false,
		},
		{
			name:   "invalid first line falls through to next",
			lines:  []string{"Collected 2024-01-15", "12.0-17.5"},
			want:   domain.NormalRange{Low: 12.0, High: 17.5},
			wantOK: true,
		},
		{
			name:   "only first pair on a line is considered",
			lines:  []string{"Ref 20-10 or 12-17"},
			wantOK: false,
		},
		{
			name:   "starts at index",
			lines:  []string{"1-2", "Hemoglobin 9.2", "no range"},
			idx:    1,
			wantOK: false,
		},
		{
			name:   "index out of bounds",
			lines:  []string{"1-2"},
			idx:    5,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNormalRange(tt.lines, tt.idx)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want.Low, got.Low, 1e-9)
				assert.InDelta(t, tt.want.High, got.High, 1e-9)
			}
		})
	}
}

func TestLines(t *testing.T) {
	raw := "  Hemoglobin 9.2 \r\n\r\n\tTSH 2.1\rCreatinine 1.0\n   \n"
	assert.Equal(t, []string{"Hemoglobin 9.2", "TSH 2.1", "Creatinine 1.0"}, Lines(raw))
	assert.Empty(t, Lines(""))
	assert.Empty(t, Lines(" \n \n"))
}

func TestLines_NFC(t *testing.T) {
	decomposed := "Prote\u0301ine 5 \u00b5IU/mL"
	lines := Lines(decomposed)
	assert.Equal(t, []string{"Prot\u00e9ine 5 \u00b5IU/mL"}, lines)

	v, ok := ExtractNumericValue(lines[0])
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
}
