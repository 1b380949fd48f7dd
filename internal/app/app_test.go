package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab-report-explainer/internal/config"
	"github.com/lab-report-explainer/internal/domain"
)

func writeConfig(t *testing.T, body string) *config.Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cm, err := config.NewManagerFromFile(path)
	require.NoError(t, err)
	return cm
}

func TestNew_MinimalConfiguration(t *testing.T) {
	cm := writeConfig(t, `
logging:
  level: debug
extraction:
  provider: none
translation:
  provider: none
feedback:
  enabled: false
`)
	var logs bytes.Buffer
	a, err := New(context.Background(), cm, WithLogOutput(&logs))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Reports)
	assert.Nil(t, a.Translation)
	assert.Nil(t, a.Feedback)
	assert.False(t, a.Reports.HasExtractor())
	assert.Equal(t, "none", a.TranslationProvider)
	assert.Equal(t, "none", a.ExtractionProvider)
	assert.Equal(t, "disabled", a.FeedbackDriver())
	assert.Contains(t, logs.String(), "Application initialized")

	result, err := a.Reports.AnalyzeText(context.Background(), "Hemoglobin: 11.8 g/dL (12.0 - 17.5)", domain.DefaultLanguage)
	require.NoError(t, err)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, domain.StatusBorderline, result.Tests[0].Status)
}

func TestNew_WithSQLiteFeedbackAndTranslation(t *testing.T) {
	dir := t.TempDir()
	cm := writeConfig(t, `
extraction:
  provider: http
  base_url: http://127.0.0.1:1
translation:
  provider: libretranslate
  libretranslate:
    base_url: http://127.0.0.1:1
  cache:
    enabled: true
    memory_size: 16
feedback:
  enabled: true
  driver: sqlite
  sqlite_path: `+filepath.Join(dir, "fb", "feedback.db")+`
`)
	a, err := New(context.Background(), cm, WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.NotNil(t, a.Translation)
	assert.Equal(t, "libretranslate", a.TranslationProvider)
	assert.Equal(t, "http", a.ExtractionProvider)
	assert.True(t, a.Reports.HasExtractor())
	require.NotNil(t, a.Feedback)
	assert.Equal(t, "sqlite", a.FeedbackDriver())

	require.NoError(t, a.Close())
	assert.FileExists(t, filepath.Join(dir, "fb", "feedback.db"))
}

func TestNew_OptionsSkipOptionalComponents(t *testing.T) {
	cm := writeConfig(t, `
extraction:
  provider: http
feedback:
  enabled: true
  sqlite_path: `+filepath.Join(t.TempDir(), "feedback.db")+`
`)
	a, err := New(context.Background(), cm, WithLogOutput(&bytes.Buffer{}), WithoutFeedback(), WithoutExtraction())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Feedback)
	assert.False(t, a.Reports.HasExtractor())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		errMsg string
	}{
		{
			name: "missing dictionary file",
			config: `
analysis:
  dictionary_path: /nonexistent/dictionary.yaml
`,
			errMsg: "reference dictionary",
		},
		{
			name: "unknown translation provider",
			config: `
extraction:
  provider: none
translation:
  provider: babelfish
`,
			errMsg: "unknown translation provider",
		},
		{
			name: "unknown extraction provider",
			config: `
extraction:
  provider: tesseract
`,
			errMsg: "unknown extraction provider",
		},
		{
			name: "postgres without url",
			config: `
extraction:
  provider: none
feedback:
  enabled: true
  driver: postgres
  database_url: ""
`,
			errMsg: "feedback store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			cm := writeConfig(t, tt.config)
			_, err := New(context.Background(), cm, WithLogOutput(&bytes.Buffer{}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
