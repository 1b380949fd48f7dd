package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/api"
	"github.com/lab-report-explainer/internal/app"
	"github.com/lab-report-explainer/internal/mcp"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cm, err := loadConfig(root)
			if err != nil {
				return err
			}
			if port > 0 {
				cm.GetServerConfig().Port = port
			}

			a, err := app.New(ctx, cm, app.WithLogOutput(os.Stdout))
			if err != nil {
				return err
			}
			defer a.Close()

			server := newHTTPServer(a)
			cfg := cm.GetServerConfig()
			a.Logger.Infof("Listening on %s:%d", cfg.Host, cfg.Port)
			if err := server.Start(ctx); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			a.Logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	return cmd
}

func mcpCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			// stdout carries the protocol, so everything else goes to stderr
			a, err := buildApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()

			server, err := newMCPServer(a)
			if err != nil {
				return err
			}
			return server.Start(ctx)
		},
	}
}

func newHTTPServer(a *app.App) *api.Server {
	return api.NewServer(a.Config, a.Reports,
		api.WithLogger(a.Logger),
		api.WithFeedbackStore(a.Feedback),
		api.WithComponents(api.ComponentInfo{
			Version:             app.Version,
			TranslationProvider: a.TranslationProvider,
			ExtractionProvider:  a.ExtractionProvider,
			FeedbackStore:       a.FeedbackDriver(),
		}),
	)
}

func newMCPServer(a *app.App) (*mcp.Server, error) {
	return mcp.NewServer(a.Config.GetConfig().MCP, a.Reports,
		mcp.WithLogger(a.Logger),
		mcp.WithFeedbackStore(a.Feedback),
	)
}
