package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/app"
)

func feedbackCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Inspect and move parse-accuracy feedback",
	}

	// withStore builds the app with feedback forced on and hands the store to fn
	withStore := func(cmd *cobra.Command, fn func(a *app.App) error) error {
		cm, err := loadConfig(root)
		if err != nil {
			return err
		}
		cm.GetConfig().Feedback.Enabled = true

		a, err := app.New(cmd.Context(), cm, app.WithLogOutput(os.Stderr), app.WithoutExtraction())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a)
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all feedback as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(a *app.App) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				return a.Feedback.ExportJSON(cmd.Context(), w)
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "-", "output file")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import feedback exported by another instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(a *app.App) error {
				data, err := readInput(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				imported, skipped, err := a.Feedback.ImportJSON(cmd.Context(), bytes.NewReader(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d feedback entries (%d skipped)\n", imported, skipped)
				return nil
			})
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show parse accuracy per test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(a *app.App) error {
				rows, err := a.Feedback.Summary(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TEST\tTOTAL\tACCURATE\tRATE")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\n", r.TestName, r.Total, r.Accurate, r.AccuracyRate*100)
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(exportCmd, importCmd, summaryCmd)
	return cmd
}
