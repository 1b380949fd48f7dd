package domain

import "time"

// TestStatus is the classification of a patient value against a normal range
type TestStatus string

const (
	StatusNormal     TestStatus = "normal"
	StatusLow        TestStatus = "low"
	StatusHigh       TestStatus = "high"
	StatusBorderline TestStatus = "borderline"
)

// AllStatuses lists every status in display order
var AllStatuses = []TestStatus{StatusNormal, StatusLow, StatusHigh, StatusBorderline}

// IsValid reports whether s is one of the four known statuses
func (s TestStatus) IsValid() bool {
	switch s {
	case StatusNormal, StatusLow, StatusHigh, StatusBorderline:
		return true
	}
	return false
}

// NormalRange is an inclusive reference interval. Low is strictly less than High.
type NormalRange struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Valid reports whether the range is well formed for a lab reference
func (r NormalRange) Valid() bool {
	return r.Low >= 0 && r.Low < r.High
}

// Explanations holds one patient-facing sentence per status
type Explanations struct {
	Normal     string `json:"normal" yaml:"normal"`
	Low        string `json:"low" yaml:"low"`
	High       string `json:"high" yaml:"high"`
	Borderline string `json:"borderline" yaml:"borderline"`
}

// For returns the template for the given status
func (e Explanations) For(status TestStatus) string {
	switch status {
	case StatusLow:
		return e.Low
	case StatusHigh:
		return e.High
	case StatusBorderline:
		return e.Borderline
	default:
		return e.Normal
	}
}

// TestReference is a dictionary entry describing one known lab test
type TestReference struct {
	Name         string       `json:"name" yaml:"name"`
	Aliases      []string     `json:"aliases" yaml:"aliases"`
	Unit         string       `json:"unit" yaml:"unit"`
	NormalRange  NormalRange  `json:"normalRange" yaml:"normal_range"`
	Explanations Explanations `json:"explanations" yaml:"explanations"`
}

// ParsedTest is a single test result recovered from report text
type ParsedTest struct {
	TestName     string      `json:"testName"`
	PatientValue float64     `json:"patientValue"`
	Unit         string      `json:"unit"`
	NormalRange  NormalRange `json:"normalRange"`
	RawText      string      `json:"rawText"`
}

// ExplainedTest is a parsed test with its status and explanation attached.
// OriginalExplanation keeps the English template once Explanation has been
// translated so callers can switch back.
type ExplainedTest struct {
	ParsedTest
	Status              TestStatus `json:"status"`
	Explanation         string     `json:"explanation"`
	OriginalExplanation string     `json:"originalExplanation,omitempty"`
}

// AnalysisRequest is the input to the analyze operation
type AnalysisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// AnalysisResult is the response of the analyze operation.
// Error carries a user-facing message when no usable text was available.
type AnalysisResult struct {
	Tests          []ExplainedTest `json:"tests"`
	RawTextPreview string          `json:"rawTextPreview,omitempty"`
	Language       string          `json:"language"`
	Error          string          `json:"error,omitempty"`
	AnalyzedAt     time.Time       `json:"analyzedAt"`
}

// TranslateRequest is the input to the translate operation
type TranslateRequest struct {
	Texts          []string `json:"texts"`
	TargetLanguage string   `json:"targetLanguage"`
}

// TranslateResponse is the output of the translate operation
type TranslateResponse struct {
	Translations []string `json:"translations"`
}
