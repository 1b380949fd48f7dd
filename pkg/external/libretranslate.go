package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lab-report-explainer/internal/domain"
)

// LibreTranslateClient talks to a LibreTranslate compatible endpoint
type LibreTranslateClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// NewLibreTranslateClient creates a new LibreTranslate client
func NewLibreTranslateClient(config domain.TranslationConfig) *LibreTranslateClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := config.RateLimit
	if limit <= 0 {
		limit = 10
	}

	return &LibreTranslateClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(config.LibreTranslate.BaseURL, "/"),
		apiKey:      config.LibreTranslate.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(limit), 1),
	}
}

// Name implements TextTranslator
func (c *LibreTranslateClient) Name() string {
	return ProviderLibreTranslate
}

// TranslateText translates a single string
func (c *LibreTranslateClient) TranslateText(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	payload, err := json.Marshal(libreTranslateRequest{
		Q:      text,
		Source: sourceLanguage,
		Target: targetLanguage,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	var result libreTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode translation response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d: %s", resp.StatusCode, result.Error)
	}
	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", fmt.Errorf("translation service returned empty text")
	}
	return result.TranslatedText, nil
}
