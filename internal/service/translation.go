package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
)

// TranslationProvider translates a single string. Implementations live in
// pkg/external and may return errors freely; TranslationService absorbs them.
type TranslationProvider interface {
	Name() string
	TranslateText(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// TranslationCache stores finished translations keyed by language and text
type TranslationCache interface {
	Get(ctx context.Context, targetLanguage, text string) (string, bool)
	Set(ctx context.Context, targetLanguage, text, translated string)
}

// IdentityTranslator returns its input unchanged. It is used when no
// translation provider is configured.
type IdentityTranslator struct{}

// Translate implements domain.Translator
func (IdentityTranslator) Translate(_ context.Context, texts []string, _ string) []string {
	out := make([]string, len(texts))
	copy(out, texts)
	return out
}

// TranslationStats counts translation outcomes since start
type TranslationStats struct {
	Requests      int64     `json:"requests"`
	Strings       int64     `json:"strings"`
	CacheHits     int64     `json:"cache_hits"`
	ProviderCalls int64     `json:"provider_calls"`
	Fallbacks     int64     `json:"fallbacks"`
	Since         time.Time `json:"since"`
}

// TranslationServiceConfig configures TranslationService
type TranslationServiceConfig struct {
	SourceLanguage string
	Timeout        time.Duration
	MaxConcurrency int
}

// TranslationService translates batches concurrently with bounded fan-out.
// Any string that cannot be translated keeps its original text.
type TranslationService struct {
	provider  TranslationProvider
	cache     TranslationCache
	source    string
	timeout   time.Duration
	semaphore chan struct{}
	logger    *logrus.Logger

	stats   TranslationStats
	statsMu sync.Mutex
}

// NewTranslationService creates a translation service. cache may be nil.
func NewTranslationService(provider TranslationProvider, cache TranslationCache, cfg TranslationServiceConfig, logger *logrus.Logger) *TranslationService {
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = domain.DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &TranslationService{
		provider:  provider,
		cache:     cache,
		source:    cfg.SourceLanguage,
		timeout:   cfg.Timeout,
		semaphore: make(chan struct{}, cfg.MaxConcurrency),
		logger:    logger,
		stats:     TranslationStats{Since: time.Now()},
	}
}

// Translate implements domain.Translator. The result always has the same
// length and order as texts.
func (s *TranslationService) Translate(ctx context.Context, texts []string, targetLanguage string) []string {
	out := make([]string, len(texts))
	copy(out, texts)

	target := domain.NormalizeLanguage(targetLanguage)
	if len(texts) == 0 || target == s.source {
		return out
	}

	s.bump(func(st *TranslationStats) {
		st.Requests++
		st.Strings += int64(len(texts))
	})

	var wg sync.WaitGroup
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}

		wg.Add(1)
		go func(idx int, original string) {
			defer wg.Done()

			select {
			case s.semaphore <- struct{}{}:
				defer func() { <-s.semaphore }()
			case <-ctx.Done():
				s.bump(func(st *TranslationStats) { st.Fallbacks++ })
				return
			}

			if translated, ok := s.translateOne(ctx, original, target); ok {
				out[idx] = translated
			}
		}(i, text)
	}
	wg.Wait()

	return out
}

func (s *TranslationService) translateOne(ctx context.Context, text, target string) (string, bool) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, target, text); ok {
			s.bump(func(st *TranslationStats) { st.CacheHits++ })
			return cached, true
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.bump(func(st *TranslationStats) { st.ProviderCalls++ })
	translated, err := s.provider.TranslateText(callCtx, text, s.source, target)
	if err != nil || strings.TrimSpace(translated) == "" {
		s.bump(func(st *TranslationStats) { st.Fallbacks++ })
		s.logger.WithFields(logrus.Fields{
			"provider":        s.provider.Name(),
			"target_language": target,
			"error":           err,
		}).Warn("Translation failed, keeping original text")
		return "", false
	}

	if s.cache != nil {
		s.cache.Set(ctx, target, text, translated)
	}
	return translated, true
}

// ProviderName returns the configured provider name
func (s *TranslationService) ProviderName() string {
	return s.provider.Name()
}

// Stats returns a snapshot of translation counters
func (s *TranslationService) Stats() TranslationStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *TranslationService) bump(fn func(*TranslationStats)) {
	s.statsMu.Lock()
	fn(&s.stats)
	s.statsMu.Unlock()
}
