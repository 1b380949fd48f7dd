package service

import (
	"fmt"

	"github.com/lab-report-explainer/internal/domain"
)

// ExplanationGenerator renders the patient-facing sentence for a test status
type ExplanationGenerator struct {
	refs domain.ReferenceLookup
}

// NewExplanationGenerator creates a generator backed by the reference dictionary
func NewExplanationGenerator(refs domain.ReferenceLookup) *ExplanationGenerator {
	return &ExplanationGenerator{refs: refs}
}

// Explain returns the dictionary template for testName and status, or a
// generic sentence when testName is not a canonical dictionary name.
func (g *ExplanationGenerator) Explain(testName string, status domain.TestStatus) string {
	if ref, ok := g.refs.Lookup(testName); ok {
		return ref.Explanations.For(status)
	}
	return GenericExplanation(testName, status)
}

// GenericExplanation is the fallback sentence for tests without a template
func GenericExplanation(testName string, status domain.TestStatus) string {
	switch status {
	case domain.StatusLow:
		return fmt.Sprintf("Your %s level is lower than the normal range. Please consult your doctor for proper evaluation.", testName)
	case domain.StatusHigh:
		return fmt.Sprintf("Your %s level is higher than the normal range. Please consult your doctor for proper evaluation.", testName)
	case domain.StatusBorderline:
		return fmt.Sprintf("Your %s level is near the edge of the normal range. It may be worth monitoring. Please discuss with your doctor.", testName)
	default:
		return fmt.Sprintf("Your %s level is within the normal range. This is generally a good sign.", testName)
	}
}

// ExplanationEngine classifies parsed tests and attaches explanations.
// It performs no I/O and is safe for concurrent use.
type ExplanationEngine struct {
	classifier *StatusClassifier
	generator  *ExplanationGenerator
}

// NewExplanationEngine wires a classifier and generator together
func NewExplanationEngine(classifier *StatusClassifier, generator *ExplanationGenerator) *ExplanationEngine {
	return &ExplanationEngine{classifier: classifier, generator: generator}
}

// GenerateExplanations preserves input order
func (e *ExplanationEngine) GenerateExplanations(tests []domain.ParsedTest) []domain.ExplainedTest {
	out := make([]domain.ExplainedTest, 0, len(tests))
	for _, t := range tests {
		status := e.classifier.Classify(t.PatientValue, t.NormalRange)
		out = append(out, domain.ExplainedTest{
			ParsedTest:  t,
			Status:      status,
			Explanation: e.generator.Explain(t.TestName, status),
		})
	}
	return out
}
