package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/app"
	"github.com/lab-report-explainer/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "labreport",
		Short:        "Explain blood test reports in plain language",
		Version:      app.Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.yaml)")

	root.AddCommand(
		analyzeCmd(opts),
		testsCmd(opts),
		translateCmd(opts),
		serveCmd(opts),
		mcpCmd(opts),
		feedbackCmd(opts),
		migrateCmd(opts),
		setupCmd(),
	)
	return root
}

func loadConfig(opts *rootOptions) (*config.Manager, error) {
	cm, err := config.NewManagerFromFile(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := cm.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cm, nil
}

// buildApp loads configuration and wires services. Logs go to stderr so
// command output on stdout stays machine readable.
func buildApp(ctx context.Context, opts *rootOptions, extra ...app.Option) (*app.App, error) {
	cm, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cm, append([]app.Option{app.WithLogOutput(os.Stderr)}, extra...)...)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
