package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/lab-report-explainer/internal/domain"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"
	geminiAttempts     = 3
)

// contentGenerator is the part of *genai.GenerativeModel the clients use
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// geminiBase carries the shared client, rate limiter and retry policy
type geminiBase struct {
	client      *genai.Client
	model       string
	temperature float32
	rateLimiter *rate.Limiter
	backoff     time.Duration
}

func newGeminiBase(ctx context.Context, config domain.GeminiConfig, rateLimit int) (*geminiBase, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	if rateLimit <= 0 {
		rateLimit = 5
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiBase{
		client:      cl,
		model:       model,
		temperature: config.Temperature,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		backoff:     300 * time.Millisecond,
	}, nil
}

func (b *geminiBase) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// generate calls the model with retries on transport errors. An empty
// candidate list is returned as-is without retrying.
func (b *geminiBase) generate(ctx context.Context, gen contentGenerator, parts ...genai.Part) (string, error) {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= geminiAttempts; attempt++ {
		resp, err := gen.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if attempt == geminiAttempts {
				break
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * b.backoff):
			}
			continue
		}
		return stripCodeFences(firstText(resp)), nil
	}
	return "", fmt.Errorf("gemini: %w", lastErr)
}

// GeminiTranslator translates strings with a Gemini model
type GeminiTranslator struct {
	*geminiBase
	newModel func(system string) contentGenerator
}

// NewGeminiTranslator creates a translator backed by the Gemini API
func NewGeminiTranslator(ctx context.Context, config domain.TranslationConfig) (*GeminiTranslator, error) {
	base, err := newGeminiBase(ctx, config.Gemini, config.RateLimit)
	if err != nil {
		return nil, err
	}
	t := &GeminiTranslator{geminiBase: base}
	t.newModel = func(system string) contentGenerator {
		m := base.client.GenerativeModel(base.model)
		m.GenerationConfig = genai.GenerationConfig{
			Temperature: ptrFloat32(base.temperature),
		}
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
		return m
	}
	return t, nil
}

// Name implements TextTranslator
func (t *GeminiTranslator) Name() string {
	return ProviderGemini
}

// TranslateText translates a single string
func (t *GeminiTranslator) TranslateText(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	gen := t.newModel(translationInstruction(sourceLanguage, targetLanguage))

	out, err := t.generate(ctx, gen, genai.Text(text))
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("gemini translate: empty response")
	}
	return out, nil
}

func translationInstruction(source, target string) string {
	return fmt.Sprintf(
		"You translate patient-facing medical explanations from %s to %s. "+
			"Keep numbers, units and test names unchanged. "+
			"Reply with the translated text only, without quotes or commentary.",
		languageLabel(source), languageLabel(target))
}

func languageLabel(code string) string {
	if lang, ok := domain.LookupLanguage(code); ok {
		return fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
	}
	return code
}

// GeminiExtractor reads lab report text out of PDFs and images with a
// Gemini multimodal model.
type GeminiExtractor struct {
	*geminiBase
	gen contentGenerator
}

type geminiExtraction struct {
	Text string `json:"text"`
}

const extractionInstruction = `You extract text from scanned or digital medical laboratory reports.
Return the report text exactly as printed, one table row per line, keeping test names, values, units and reference ranges on the same line as they appear.
Do not interpret, summarize or correct anything.
Respond with JSON only: {"text": "<extracted text>"}. If there is no readable text respond with {"text": ""}.`

// NewGeminiExtractor creates an extractor backed by the Gemini API
func NewGeminiExtractor(ctx context.Context, config domain.ExtractionConfig) (*GeminiExtractor, error) {
	base, err := newGeminiBase(ctx, config.Gemini, config.RateLimit)
	if err != nil {
		return nil, err
	}

	m := base.client.GenerativeModel(base.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(extractionInstruction)}}

	return &GeminiExtractor{geminiBase: base, gen: m}, nil
}

// Extract sends the document to the model and returns the text it read
func (e *GeminiExtractor) Extract(ctx context.Context, document []byte, fileType string) (string, error) {
	if len(document) == 0 {
		return "", domain.ErrNoText
	}

	parts := []genai.Part{
		genai.Text("Extract the lab report text from this document."),
		&genai.Blob{MIMEType: mimeType(fileType), Data: document},
	}

	out, err := e.generate(ctx, e.gen, parts...)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", domain.ErrNoText
	}

	var res geminiExtraction
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return "", fmt.Errorf("gemini extract: bad JSON: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", domain.ErrNoText
	}
	return res.Text, nil
}

func mimeType(fileType string) string {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if strings.Contains(ft, "/") {
		if ft == "image/jpg" {
			return "image/jpeg"
		}
		return ft
	}
	switch ft {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	}
	return "application/octet-stream"
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(f float32) *float32 { return &f }
