package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/database"
	"github.com/lab-report-explainer/internal/logging"
)

func migrateCmd(root *rootOptions) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres feedback schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default: feedback.database_url)")

	// runner resolves the URL from the flag or configuration
	runner := func() (*database.MigrationRunner, error) {
		url := databaseURL
		var logger *logrus.Logger
		cm, err := loadConfig(root)
		if err == nil {
			logger = logging.NewWithOutput(cm.GetConfig().Logging, os.Stderr)
			if url == "" {
				url = cm.GetConfig().Feedback.DatabaseURL
			}
		} else if url == "" {
			return nil, err
		}
		if logger == nil {
			logger = logrus.New()
			logger.SetOutput(os.Stderr)
		}
		if url == "" {
			return nil, fmt.Errorf("no database URL: set feedback.database_url or --database-url")
		}
		return database.NewMigrationRunner(url, logger)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mr, err := runner()
			if err != nil {
				return err
			}
			defer mr.Close()
			if err := mr.Up(); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), mr)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mr, err := runner()
			if err != nil {
				return err
			}
			defer mr.Close()
			if err := mr.Down(); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), mr)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mr, err := runner()
			if err != nil {
				return err
			}
			defer mr.Close()
			return printVersion(cmd.OutOrStdout(), mr)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the embedded migration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := database.MigrationNames()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd, listCmd)
	return cmd
}

func printVersion(w io.Writer, mr *database.MigrationRunner) error {
	version, dirty, err := mr.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(w, "schema version %d (%s)\n", version, state)
	return nil
}
