package external

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab-report-explainer/internal/domain"
)

func newTestExtractionClient(url string) *ExtractionClient {
	return NewExtractionClient(domain.ExtractionConfig{
		BaseURL:   url,
		Timeout:   2 * time.Second,
		RateLimit: 1000,
	})
}

func TestExtractionClient_Extract(t *testing.T) {
	tests := []struct {
		name         string
		fileType     string
		wantFileType string
		wantFilename string
	}{
		{name: "pdf mime type", fileType: "application/pdf", wantFileType: "pdf", wantFilename: "document.pdf"},
		{name: "jpg kept as sent", fileType: "image/jpg", wantFileType: "jpg", wantFilename: "document.jpg"},
		{name: "jpeg kept as sent", fileType: "image/jpeg", wantFileType: "jpeg", wantFilename: "document.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFileType, gotFilename string
			var gotBody []byte

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/extract", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)

				require.NoError(t, r.ParseMultipartForm(1<<20))
				gotFileType = r.FormValue("file_type")

				f, hdr, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				gotFilename = hdr.Filename
				gotBody, _ = io.ReadAll(f)

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"success":  true,
					"text":     "Hemoglobin 10.2 g/dL 12.0 - 15.5",
					"metadata": map[string]interface{}{"pages": 1},
				})
			}))
			defer server.Close()

			client := newTestExtractionClient(server.URL + "/")
			text, err := client.Extract(context.Background(), []byte("%PDF-1.4"), tt.fileType)

			require.NoError(t, err)
			assert.Equal(t, "Hemoglobin 10.2 g/dL 12.0 - 15.5", text)
			assert.Equal(t, tt.wantFileType, gotFileType)
			assert.Equal(t, tt.wantFilename, gotFilename)
			assert.Equal(t, []byte("%PDF-1.4"), gotBody)
		})
	}
}

func TestExtractionClient_NoText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unsuccessful", body: `{"success": false, "text": "ignored"}`},
		{name: "blank text", body: `{"success": true, "text": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestExtractionClient(server.URL).Extract(context.Background(), []byte("data"), "image/png")
			assert.ErrorIs(t, err, domain.ErrNoText)
		})
	}
}

func TestExtractionClient_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestExtractionClient(server.URL).Extract(context.Background(), []byte("data"), "pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
		assert.NotErrorIs(t, err, domain.ErrNoText)
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}))
		defer server.Close()

		_, err := newTestExtractionClient(server.URL).Extract(context.Background(), []byte("data"), "pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := newTestExtractionClient("http://127.0.0.1:1").Extract(context.Background(), nil, "pdf")
		assert.ErrorIs(t, err, domain.ErrNoText)
	})
}

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"application/pdf": "pdf",
		"image/jpeg":      "jpeg",
		"image/jpg":       "jpg",
		"image/png":       "png",
		"PNG":             "png",
		"":                "bin",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileExtension(in), in)
	}
}
