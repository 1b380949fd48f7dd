package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lab-report-explainer/internal/api"
	"github.com/lab-report-explainer/internal/app"
	"github.com/lab-report-explainer/internal/config"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, configManager, app.WithLogOutput(os.Stdout))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	cfg := configManager.GetConfig()
	application.Logger.Infof("Starting lab report explainer API on %s:%d", cfg.Server.Host, cfg.Server.Port)

	server := api.NewServer(configManager, application.Reports,
		api.WithLogger(application.Logger),
		api.WithFeedbackStore(application.Feedback),
		api.WithComponents(api.ComponentInfo{
			Version:             app.Version,
			TranslationProvider: application.TranslationProvider,
			ExtractionProvider:  application.ExtractionProvider,
			FeedbackStore:       application.FeedbackDriver(),
		}),
	)

	if err := server.Start(ctx); err != nil {
		application.Logger.WithError(err).Error("Server failed")
		return
	}

	application.Logger.Info("Server stopped")
}
