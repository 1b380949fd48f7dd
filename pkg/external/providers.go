package external

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
)

// NewTranslator builds the configured translation provider wrapped in a
// circuit breaker. It returns nil for the "none" provider. The returned
// close function releases provider resources and is never nil.
func NewTranslator(ctx context.Context, config domain.TranslationConfig, logger *logrus.Logger) (TextTranslator, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", ProviderNone:
		return nil, noop, nil
	case ProviderLibreTranslate:
		client := NewLibreTranslateClient(config)
		return NewResilientTranslator(client, config.Breaker, logger), noop, nil
	case ProviderGemini:
		client, err := NewGeminiTranslator(ctx, config)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gemini translator: %w", err)
		}
		return NewResilientTranslator(client, config.Breaker, logger), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// NewExtractor builds the configured document extractor wrapped in a
// circuit breaker. It returns nil for the "none" provider.
func NewExtractor(ctx context.Context, config domain.ExtractionConfig, logger *logrus.Logger) (DocumentExtractor, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", ProviderNone:
		return nil, noop, nil
	case ProviderHTTP:
		client := NewExtractionClient(config)
		return NewResilientExtractor(ProviderHTTP, client, config.Breaker, logger), noop, nil
	case ProviderGemini:
		client, err := NewGeminiExtractor(ctx, config)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gemini extractor: %w", err)
		}
		return NewResilientExtractor(ProviderGemini, client, config.Breaker, logger), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown extraction provider: %s", config.Provider)
	}
}
