package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
	"github.com/lab-report-explainer/internal/feedback"
	"github.com/lab-report-explainer/internal/middleware"
	"github.com/lab-report-explainer/internal/service"
)

// ComponentInfo describes the configured collaborators for /health
type ComponentInfo struct {
	Version             string `json:"version"`
	TranslationProvider string `json:"translation_provider"`
	ExtractionProvider  string `json:"extraction_provider"`
	FeedbackStore       string `json:"feedback_store"`
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	reports       *service.ReportService
	feedback      feedback.Store
	components    ComponentInfo
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// Option configures the server
type Option func(*Server)

// WithFeedbackStore enables the feedback endpoints
func WithFeedbackStore(store feedback.Store) Option {
	return func(s *Server) {
		s.feedback = store
	}
}

// WithComponents sets the component info reported by /health
func WithComponents(info ComponentInfo) Option {
	return func(s *Server) {
		s.components = info
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, reports *service.ReportService, opts ...Option) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		configManager: configManager,
		reports:       reports,
		logger:        logrus.New(),
		components:    ComponentInfo{Version: "dev"},
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.RequestLogger(s.logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	// multipart framing needs some room on top of the file itself
	router.Use(middleware.BodyLimit(cfg.Server.MaxUploadBytes + 1<<20))
	if cfg.Server.WriteTimeout > 0 {
		router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))
	}

	s.router = router
	s.setupRoutes()

	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.CorrelationIDHeader},
		ExposeHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/languages", s.handleLanguages)
		v1.GET("/tests", s.handleTests)
		v1.POST("/analyze", s.handleAnalyzeDocument)
		v1.POST("/analyze/text", s.handleAnalyzeText)
		v1.POST("/translate", s.handleTranslate)

		fb := v1.Group("/feedback", s.requireFeedback)
		{
			fb.POST("", s.handleSubmitFeedback)
			fb.GET("", s.handleListFeedback)
			fb.GET("/summary", s.handleFeedbackSummary)
			fb.GET("/export", s.handleExportFeedback)
		}
	}
}

func (s *Server) abortWithError(c *gin.Context, status int, code, message, details string) {
	middleware.AbortWithError(c, status, code, message, details)
}
