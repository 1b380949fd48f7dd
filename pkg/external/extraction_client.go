package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lab-report-explainer/internal/domain"
)

// ExtractionClient calls a remote text extraction service. The service takes
// a multipart upload on {base_url}/extract and answers with
// {"success": bool, "text": string, "metadata": {...}}.
type ExtractionClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

type extractionResponse struct {
	Success  bool                   `json:"success"`
	Text     string                 `json:"text"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewExtractionClient creates a new extraction service client
func NewExtractionClient(config domain.ExtractionConfig) *ExtractionClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := config.RateLimit
	if limit <= 0 {
		limit = 5
	}

	return &ExtractionClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(limit), 1),
	}
}

// Extract uploads the document and returns the extracted text. A response
// flagged unsuccessful or carrying blank text yields domain.ErrNoText.
func (c *ExtractionClient) Extract(ctx context.Context, document []byte, fileType string) (string, error) {
	if len(document) == 0 {
		return "", domain.ErrNoText
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, contentType, err := buildExtractionForm(document, fileType)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result extractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode extraction response: %w", err)
	}

	if !result.Success || strings.TrimSpace(result.Text) == "" {
		return "", domain.ErrNoText
	}
	return result.Text, nil
}

func buildExtractionForm(document []byte, fileType string) (*bytes.Buffer, string, error) {
	ext := fileExtension(fileType)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", "document."+ext)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return nil, "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := w.WriteField("file_type", ext); err != nil {
		return nil, "", fmt.Errorf("failed to write file type: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// fileExtension maps a MIME type such as "application/pdf" to "pdf". Bare
// extensions pass through unchanged.
func fileExtension(fileType string) string {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if i := strings.LastIndex(ft, "/"); i >= 0 {
		ft = ft[i+1:]
	}
	if ft == "" {
		return "bin"
	}
	return ft
}
