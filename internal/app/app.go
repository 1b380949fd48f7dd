// Package app wires configuration into the services shared by the HTTP
// server, the MCP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/config"
	"github.com/lab-report-explainer/internal/dictionary"
	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
	"github.com/lab-report-explainer/internal/logging"
	"github.com/lab-report-explainer/internal/service"
	"github.com/lab-report-explainer/pkg/external"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=..."
var Version = "dev"

// App holds the wired services.
// Translation is nil when no provider is configured and Feedback is nil
// when feedback collection is disabled.
type App struct {
	Config      *config.Manager
	Logger      *logrus.Logger
	Dictionary  *dictionary.Dictionary
	Reports     *service.ReportService
	Translation *service.TranslationService
	Feedback    feedback.Store

	TranslationProvider string
	ExtractionProvider  string

	closers []func() error
}

type options struct {
	logOutput    io.Writer
	skipFeedback bool
	skipExtract  bool
}

// Option configures New
type Option func(*options)

// WithLogOutput redirects logs. The MCP server sends them to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithoutFeedback skips opening the feedback store
func WithoutFeedback() Option {
	return func(o *options) {
		o.skipFeedback = true
	}
}

// WithoutExtraction skips building the document extractor
func WithoutExtraction() Option {
	return func(o *options) {
		o.skipExtract = true
	}
}

// New builds every service from configuration. Close releases what it
// opened, also when New fails part way.
func New(ctx context.Context, cm *config.Manager, opts ...Option) (*App, error) {
	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	cfg := cm.GetConfig()
	a := &App{
		Config:              cm,
		Logger:              logging.NewWithOutput(cfg.Logging, o.logOutput),
		TranslationProvider: external.ProviderNone,
		ExtractionProvider:  external.ProviderNone,
	}

	dict, err := dictionary.FromConfig(cfg.Analysis.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference dictionary: %w", err)
	}
	a.Dictionary = dict

	reportOpts := []service.ReportServiceOption{service.WithLogger(a.Logger)}

	ts, err := a.buildTranslation(ctx, cfg.Translation)
	if err != nil {
		a.Close()
		return nil, err
	}
	if ts != nil {
		a.Translation = ts
		reportOpts = append(reportOpts, service.WithTranslator(ts))
	}

	if !o.skipExtract {
		extractor, closeFn, err := external.NewExtractor(ctx, cfg.Extraction, a.Logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, closeFn)
		if extractor != nil {
			a.ExtractionProvider = cfg.Extraction.Provider
			reportOpts = append(reportOpts, service.WithExtractor(extractor))
		}
	}

	a.Reports = service.NewReportService(dict, cfg.Analysis, reportOpts...)

	if cfg.Feedback.Enabled && !o.skipFeedback {
		store, err := feedback.Open(ctx, cfg.Feedback, a.Logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open feedback store: %w", err)
		}
		a.Feedback = store
		a.closers = append(a.closers, store.Close)
	}

	a.Logger.WithFields(logrus.Fields{
		"version":     Version,
		"references":  dict.Len(),
		"translation": a.TranslationProvider,
		"extraction":  a.ExtractionProvider,
		"feedback":    a.Feedback != nil,
	}).Info("Application initialized")

	return a, nil
}

func (a *App) buildTranslation(ctx context.Context, cfg domain.TranslationConfig) (*service.TranslationService, error) {
	provider, closeFn, err := external.NewTranslator(ctx, cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeFn)
	if provider == nil {
		return nil, nil
	}
	a.TranslationProvider = provider.Name()

	var cache service.TranslationCache
	if cfg.Cache.Enabled {
		var redisClient *external.CacheClient
		if cfg.Cache.RedisURL != "" {
			redisClient, err = external.NewCacheClient(ctx, cfg.Cache)
			if err != nil {
				a.Logger.WithError(err).Warn("Redis translation cache unavailable, using memory only")
				redisClient = nil
			}
		}
		tc := external.NewTranslationCache(cfg.Cache, redisClient, a.Logger)
		a.closers = append(a.closers, tc.Close)
		cache = tc
	}

	return service.NewTranslationService(provider, cache, service.TranslationServiceConfig{
		SourceLanguage: cfg.SourceLanguage,
		Timeout:        cfg.Timeout,
		MaxConcurrency: cfg.MaxConcurrency,
	}, a.Logger), nil
}

// FeedbackDriver names the feedback backend for health output
func (a *App) FeedbackDriver() string {
	if a.Feedback == nil {
		return "disabled"
	}
	driver := a.Config.GetConfig().Feedback.Driver
	if driver == "" {
		return feedback.DriverSQLite
	}
	return driver
}

// Close releases resources in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
