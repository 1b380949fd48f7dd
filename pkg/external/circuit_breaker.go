package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/lab-report-explainer/internal/domain"
)

// NewCircuitBreaker builds a breaker that trips on consecutive failures or
// on a high failure ratio once enough requests have been seen.
func NewCircuitBreaker(name string, cfg domain.CircuitBreakerConfig, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinRequestsToTrip == 0 {
		cfg.MinRequestsToTrip = 10
	}
	if logger == nil {
		logger = logrus.New()
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.MaxFailures > 0 && counts.ConsecutiveFailures >= cfg.MaxFailures {
				return true
			}
			// a zero rate limit disables ratio tripping
			if cfg.FailureRateLimit <= 0 || counts.Requests < cfg.MinRequestsToTrip {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRateLimit
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// ResilientTranslator guards a TextTranslator with a circuit breaker
type ResilientTranslator struct {
	inner   TextTranslator
	breaker *gobreaker.CircuitBreaker
}

// NewResilientTranslator wraps inner with a breaker named after the provider
func NewResilientTranslator(inner TextTranslator, cfg domain.CircuitBreakerConfig, logger *logrus.Logger) *ResilientTranslator {
	return &ResilientTranslator{
		inner:   inner,
		breaker: NewCircuitBreaker("translation-"+inner.Name(), cfg, logger),
	}
}

// Name returns the wrapped provider name
func (r *ResilientTranslator) Name() string {
	return r.inner.Name()
}

// TranslateText implements TextTranslator
func (r *ResilientTranslator) TranslateText(ctx context.Context, text, source, target string) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.TranslateText(ctx, text, source, target)
	})
	if err != nil {
		if isBreakerRejection(err) {
			return "", fmt.Errorf("%s translation unavailable (circuit breaker open): %w", r.inner.Name(), err)
		}
		return "", err
	}
	return result.(string), nil
}

// State returns the breaker state
func (r *ResilientTranslator) State() gobreaker.State {
	return r.breaker.State()
}

// ResilientExtractor guards a DocumentExtractor with a circuit breaker.
// An empty extraction is not counted as a breaker failure.
type ResilientExtractor struct {
	inner   DocumentExtractor
	breaker *gobreaker.CircuitBreaker
}

// NewResilientExtractor wraps inner with a breaker
func NewResilientExtractor(name string, inner DocumentExtractor, cfg domain.CircuitBreakerConfig, logger *logrus.Logger) *ResilientExtractor {
	return &ResilientExtractor{
		inner:   inner,
		breaker: NewCircuitBreaker("extraction-"+name, cfg, logger),
	}
}

// Extract implements domain.TextExtractor
func (r *ResilientExtractor) Extract(ctx context.Context, document []byte, fileType string) (string, error) {
	var empty bool
	result, err := r.breaker.Execute(func() (interface{}, error) {
		text, err := r.inner.Extract(ctx, document, fileType)
		if errors.Is(err, domain.ErrNoText) {
			empty = true
			return "", nil
		}
		return text, err
	})
	if err != nil {
		if isBreakerRejection(err) {
			return "", fmt.Errorf("text extraction unavailable (circuit breaker open): %w", err)
		}
		return "", err
	}
	if empty {
		return "", domain.ErrNoText
	}
	return result.(string), nil
}

// State returns the breaker state
func (r *ResilientExtractor) State() gobreaker.State {
	return r.breaker.State()
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
