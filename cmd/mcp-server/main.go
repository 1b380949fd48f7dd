package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lab-report-explainer/internal/app"
	"github.com/lab-report-explainer/internal/config"
	"github.com/lab-report-explainer/internal/mcp"
)

func main() {
	// stdout is the protocol stream
	log.SetOutput(os.Stderr)

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, configManager, app.WithLogOutput(os.Stderr))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	server, err := mcp.NewServer(configManager.GetConfig().MCP, application.Reports,
		mcp.WithLogger(application.Logger),
		mcp.WithFeedbackStore(application.Feedback),
	)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if err := server.Start(ctx); err != nil {
		application.Logger.WithError(err).Error("MCP server stopped with error")
		return
	}

	application.Logger.Info("MCP server stopped")
}
