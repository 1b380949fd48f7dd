package external

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/lab-report-explainer/internal/domain"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	parts     []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.parts = parts
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	text := ""
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}},
		},
	}, nil
}

func testGeminiBase() *geminiBase {
	return &geminiBase{
		model:       defaultGeminiModel,
		rateLimiter: rate.NewLimiter(rate.Inf, 1),
		backoff:     time.Millisecond,
	}
}

func TestGeminiTranslator_TranslateText(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"  Votre hémoglobine est basse.\n"}}
	var system string

	tr := &GeminiTranslator{
		geminiBase: testGeminiBase(),
		newModel: func(s string) contentGenerator {
			system = s
			return gen
		},
	}

	out, err := tr.TranslateText(context.Background(), "Your hemoglobin is low.", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Votre hémoglobine est basse.", out)
	assert.Contains(t, system, "French (fr)")
	assert.Contains(t, system, "English (en)")
	assert.Equal(t, ProviderGemini, tr.Name())
	assert.NoError(t, tr.Close())
}

func TestGeminiTranslator_RetriesThenFails(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("503"), errors.New("503"), errors.New("503")}}
	tr := &GeminiTranslator{
		geminiBase: testGeminiBase(),
		newModel:   func(string) contentGenerator { return gen },
	}

	_, err := tr.TranslateText(context.Background(), "x", "en", "de")
	require.Error(t, err)
	assert.Equal(t, geminiAttempts, gen.calls)
}

func TestGeminiTranslator_RecoversOnRetry(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{errors.New("transient")},
		responses: []string{"", "Hallo"},
	}
	tr := &GeminiTranslator{
		geminiBase: testGeminiBase(),
		newModel:   func(string) contentGenerator { return gen },
	}

	out, err := tr.TranslateText(context.Background(), "Hello", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", out)
	assert.Equal(t, 2, gen.calls)
}

func TestGeminiExtractor_Extract(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n{\"text\": \"TSH 5.2 mIU/L 0.4 - 4.0\"}\n```"}}
	ex := &GeminiExtractor{geminiBase: testGeminiBase(), gen: gen}

	text, err := ex.Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "TSH 5.2 mIU/L 0.4 - 4.0", text)

	require.Len(t, gen.parts, 2)
	blob, ok := gen.parts[1].(*genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
}

func TestGeminiExtractor_NoText(t *testing.T) {
	tests := []struct {
		name     string
		response string
		document []byte
	}{
		{name: "empty json text", response: `{"text": ""}`, document: []byte("x")},
		{name: "empty response", response: "", document: []byte("x")},
		{name: "empty document", response: `{"text": "ignored"}`, document: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &GeminiExtractor{
				geminiBase: testGeminiBase(),
				gen:        &fakeGenerator{responses: []string{tt.response}},
			}
			_, err := ex.Extract(context.Background(), tt.document, "pdf")
			assert.ErrorIs(t, err, domain.ErrNoText)
		})
	}
}

func TestGeminiExtractor_BadJSON(t *testing.T) {
	ex := &GeminiExtractor{
		geminiBase: testGeminiBase(),
		gen:        &fakeGenerator{responses: []string{"Hemoglobin 12"}},
	}
	_, err := ex.Extract(context.Background(), []byte("x"), "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad JSON")
}

func TestMimeType(t *testing.T) {
	tests := map[string]string{
		"pdf":             "application/pdf",
		"jpg":             "image/jpeg",
		"image/jpg":       "image/jpeg",
		"image/png":       "image/png",
		"application/pdf": "application/pdf",
		"tiff":            "application/octet-stream",
	}
	for in, want := range tests {
		assert.Equal(t, want, mimeType(in), in)
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", stripCodeFences("  plain  "))
}

func TestNewGeminiTranslator_RequiresKey(t *testing.T) {
	_, err := NewGeminiTranslator(context.Background(), domain.TranslationConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
