package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Extraction error",
			code:      ErrExtractionFailed,
			message:   MsgExtractionFailed,
			details:   "extraction service returned 502",
			requestID: "req-123",
		},
		{
			name:      "Language error",
			code:      ErrUnsupportedLanguage,
			message:   "language xx is not supported",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.details, err.Details)
			assert.Equal(t, tt.requestID, err.RequestID)
			assert.WithinDuration(t, time.Now().UTC(), err.Timestamp, time.Minute)
			assert.Equal(t, tt.code+": "+tt.message, err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("language", "unsupported language code", "xx")

	assert.Equal(t, "validation error for field 'language': unsupported language code", err.Error())
	assert.True(t, IsValidationError(fmt.Errorf("analyze: %w", err)))
	assert.False(t, IsValidationError(ErrNoText))
}

func TestLookupLanguage(t *testing.T) {
	lang, ok := LookupLanguage(" HI ")
	assert.True(t, ok)
	assert.Equal(t, "Hindi", lang.Name)

	_, ok = LookupLanguage("xx")
	assert.False(t, ok)

	assert.Len(t, SupportedLanguages, 22)
	assert.Equal(t, "en", NormalizeLanguage(""))
	assert.Equal(t, "ta", NormalizeLanguage("TA"))
}

func TestTestStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TestStatus("critical").IsValid())

	e := Explanations{Normal: "n", Low: "l", High: "h", Borderline: "b"}
	assert.Equal(t, "l", e.For(StatusLow))
	assert.Equal(t, "b", e.For(StatusBorderline))
	assert.Equal(t, "h", e.For(StatusHigh))
	assert.Equal(t, "n", e.For(StatusNormal))
}

func TestNormalRangeValid(t *testing.T) {
	assert.True(t, NormalRange{Low: 0, High: 200}.Valid())
	assert.False(t, NormalRange{Low: 5, High: 5}.Valid())
	assert.False(t, NormalRange{Low: -1, High: 5}.Valid())
}
