// Package external holds clients for the collaborators the report pipeline
// depends on but does not implement: document text extraction and machine
// translation, plus the resilience and caching layers around them.
package external

import (
	"context"
)

// Provider names accepted in configuration
const (
	ProviderNone           = "none"
	ProviderHTTP           = "http"
	ProviderGemini         = "gemini"
	ProviderLibreTranslate = "libretranslate"
)

// TextTranslator translates one string between two languages
type TextTranslator interface {
	Name() string
	TranslateText(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// DocumentExtractor turns a document into plain text
type DocumentExtractor interface {
	Extract(ctx context.Context, document []byte, fileType string) (string, error)
}
