package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
)

// AnalyzeReportParams defines parameters for analyze_report
type AnalyzeReportParams struct {
	Text     string `json:"text" jsonschema:"the raw lab report text"`
	Language string `json:"language,omitempty" jsonschema:"target language code for explanations, default en"`
}

// TranslateTextsParams defines parameters for translate_texts
type TranslateTextsParams struct {
	Texts          []string `json:"texts" jsonschema:"strings to translate"`
	TargetLanguage string   `json:"target_language" jsonschema:"target language code"`
}

// ListReferenceTestsParams takes no arguments
type ListReferenceTestsParams struct{}

// SubmitParseFeedbackParams defines parameters for submit_parse_feedback
type SubmitParseFeedbackParams struct {
	TestName     string   `json:"test_name" jsonschema:"canonical test name as returned by analyze_report"`
	ParsedValue  float64  `json:"parsed_value" jsonschema:"the value the explainer read"`
	Accurate     bool     `json:"accurate" jsonschema:"true when the parsed value was correct"`
	CorrectValue *float64 `json:"correct_value,omitempty" jsonschema:"the value printed on the report when the parsed value was wrong"`
	ParsedStatus string   `json:"parsed_status,omitempty" jsonschema:"status returned by analyze_report"`
	Language     string   `json:"language,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	SubmissionID string   `json:"submission_id,omitempty" jsonschema:"UUID of an earlier submission to update"`
}

func (s *Server) handleAnalyzeReport(ctx context.Context, req *mcp.CallToolRequest, params AnalyzeReportParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolAnalyzeReport).Info("Tool invoked")

	result, err := s.reports.AnalyzeText(ctx, params.Text, params.Language)
	if err != nil {
		if domain.IsValidationError(err) {
			return s.createErrorResult("Invalid parameters", err), nil, nil
		}
		return s.createErrorResult(domain.MsgAnalysisFailed, err), nil, nil
	}

	return s.jsonResult(summarizeAnalysis(result), result)
}

func summarizeAnalysis(result *domain.AnalysisResult) string {
	if result.Error != "" {
		return result.Error
	}
	if len(result.Tests) == 0 {
		return "No recognized lab tests were found in the report."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d test(s):\n", len(result.Tests))
	for _, t := range result.Tests {
		fmt.Fprintf(&b, "- %s: %g %s (normal %g-%g) is %s. %s\n",
			t.TestName, t.PatientValue, t.Unit, t.NormalRange.Low, t.NormalRange.High, t.Status, t.Explanation)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Server) handleTranslateTexts(ctx context.Context, req *mcp.CallToolRequest, params TranslateTextsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":     ToolTranslateTexts,
		"count":    len(params.Texts),
		"language": params.TargetLanguage,
	}).Info("Tool invoked")

	translations, err := s.reports.TranslateTexts(ctx, params.Texts, params.TargetLanguage)
	if err != nil {
		return s.createErrorResult("Invalid parameters", err), nil, nil
	}

	return s.jsonResult(strings.Join(translations, "\n"), domain.TranslateResponse{Translations: translations})
}

func (s *Server) handleListReferenceTests(ctx context.Context, req *mcp.CallToolRequest, _ ListReferenceTestsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolListReferenceTests).Info("Tool invoked")

	refs := s.reports.References()
	lines := make([]string, 0, len(refs))
	for _, r := range refs {
		lines = append(lines, fmt.Sprintf("%s (%s): %g-%g", r.Name, r.Unit, r.NormalRange.Low, r.NormalRange.High))
	}

	return s.jsonResult(strings.Join(lines, "\n"), map[string]interface{}{
		"count": len(refs),
		"tests": refs,
	})
}

func (s *Server) handleSubmitParseFeedback(ctx context.Context, req *mcp.CallToolRequest, params SubmitParseFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":      ToolSubmitParseFeedback,
		"test_name": params.TestName,
		"accurate":  params.Accurate,
	}).Info("Tool invoked")

	fb := &feedback.Feedback{
		SubmissionID: params.SubmissionID,
		TestName:     params.TestName,
		ParsedValue:  params.ParsedValue,
		CorrectValue: params.CorrectValue,
		ParsedStatus: domain.TestStatus(strings.ToLower(params.ParsedStatus)),
		Accurate:     params.Accurate,
		Language:     params.Language,
		Notes:        params.Notes,
	}
	if ref, ok := s.reports.Resolve(fb.TestName); ok {
		fb.TestName = ref.Name
	}

	if err := s.feedback.Save(ctx, fb); err != nil {
		if domain.IsValidationError(err) {
			return s.createErrorResult("Invalid parameters", err), nil, nil
		}
		return s.createErrorResult("Failed to save feedback", err), nil, nil
	}

	return s.jsonResult(fmt.Sprintf("Feedback recorded for %s (submission %s)", fb.TestName, fb.SubmissionID), fb)
}

// jsonResult returns a summary line followed by the JSON payload
func (s *Server) jsonResult(summary string, payload interface{}) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return s.createErrorResult("Failed to encode result", err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
