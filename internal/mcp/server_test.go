package mcp

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab-report-explainer/internal/dictionary"
	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
	"github.com/lab-report-explainer/internal/service"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T, withFeedback bool) *Server {
	t.Helper()
	reports := service.NewReportService(dictionary.Default(), domain.AnalysisConfig{}, service.WithLogger(quietLogger()))

	opts := []ServerOption{WithLogger(quietLogger())}
	if withFeedback {
		store, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "fb.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		opts = append(opts, WithFeedbackStore(store))
	}

	s, err := NewServer(domain.MCPConfig{ServerName: "test", ServerVersion: "0.0.1"}, reports, opts...)
	require.NoError(t, err)
	return s
}

func textOf(t *testing.T, res *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(res.Content), i)
	tc, ok := res.Content[i].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t, false)
	assert.NotNil(t, s.mcpServer)
	assert.Equal(t, []string{ToolAnalyzeReport, ToolTranslateTexts, ToolListReferenceTests}, s.Tools())

	withFeedback := newTestServer(t, true)
	assert.Contains(t, withFeedback.Tools(), ToolSubmitParseFeedback)
}

func TestNewServer_RequiresReports(t *testing.T) {
	_, err := NewServer(domain.MCPConfig{}, nil)
	assert.Error(t, err)
}

func TestAnalyzeReportTool(t *testing.T) {
	s := newTestServer(t, false)

	res, _, err := s.handleAnalyzeReport(context.Background(), nil, AnalyzeReportParams{
		Text: "Hemoglobin 11.8 g/dL 12.0 - 17.5\nTSH 2.1 mIU/L 0.4-4.0",
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	summary := textOf(t, res, 0)
	assert.Contains(t, summary, "Found 2 test(s)")
	assert.Contains(t, summary, "Hemoglobin: 11.8 g/dL (normal 12-17.5) is borderline.")

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res, 1)), &result))
	require.Len(t, result.Tests, 2)
	assert.Equal(t, domain.StatusNormal, result.Tests[1].Status)
}

func TestAnalyzeReportTool_Errors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		params AnalyzeReportParams
		want   string
	}{
		{name: "unsupported language", params: AnalyzeReportParams{Text: "Hemoglobin 11.8 g/dL", Language: "zz"}, want: "unsupported language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handleAnalyzeReport(context.Background(), nil, tt.params)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, textOf(t, res, 0), tt.want)
		})
	}
}

func TestAnalyzeReportTool_EmptyText(t *testing.T) {
	s := newTestServer(t, false)

	for _, text := range []string{"", "  "} {
		res, _, err := s.handleAnalyzeReport(context.Background(), nil, AnalyzeReportParams{Text: text})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, domain.MsgExtractionFailed, textOf(t, res, 0))

		var result domain.AnalysisResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res, 1)), &result))
		assert.Equal(t, domain.MsgExtractionFailed, result.Error)
		assert.Empty(t, result.Tests)
	}
}

func TestAnalyzeReportTool_NoTests(t *testing.T) {
	s := newTestServer(t, false)

	res, _, err := s.handleAnalyzeReport(context.Background(), nil, AnalyzeReportParams{Text: "Patient name and address only"})
	require.NoError(t, err)
	assert.Equal(t, "No recognized lab tests were found in the report.", textOf(t, res, 0))
}

func TestTranslateTextsTool(t *testing.T) {
	s := newTestServer(t, false)

	res, _, err := s.handleTranslateTexts(context.Background(), nil, TranslateTextsParams{
		Texts:          []string{"a", "b"},
		TargetLanguage: "es",
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	// no provider configured, so strings come back unchanged
	assert.Equal(t, "a\nb", textOf(t, res, 0))

	res, _, err = s.handleTranslateTexts(context.Background(), nil, TranslateTextsParams{TargetLanguage: "es"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res, 0), domain.MsgNoTexts)
}

func TestListReferenceTestsTool(t *testing.T) {
	s := newTestServer(t, false)

	res, _, err := s.handleListReferenceTests(context.Background(), nil, ListReferenceTestsParams{})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, res, 0), "Hemoglobin (g/dL): 12-17.5")

	var payload struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res, 1)), &payload))
	assert.Equal(t, 10, payload.Count)
}

func TestSubmitParseFeedbackTool(t *testing.T) {
	s := newTestServer(t, true)
	ctx := context.Background()

	correct := 13.1
	res, _, err := s.handleSubmitParseFeedback(ctx, nil, SubmitParseFeedbackParams{
		TestName:     "hgb",
		ParsedValue:  1.31,
		Accurate:     false,
		CorrectValue: &correct,
		ParsedStatus: "LOW",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res, 0))
	assert.Contains(t, textOf(t, res, 0), "Feedback recorded for Hemoglobin")

	var saved feedback.Feedback
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res, 1)), &saved))
	assert.Equal(t, "Hemoglobin", saved.TestName)
	assert.Equal(t, domain.StatusLow, saved.ParsedStatus)

	got, err := s.feedback.Get(ctx, saved.SubmissionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 13.1, *got.CorrectValue)

	res, _, err = s.handleSubmitParseFeedback(ctx, nil, SubmitParseFeedbackParams{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
