package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/app"
	"github.com/lab-report-explainer/internal/domain"
)

func analyzeCmd(root *rootOptions) *cobra.Command {
	var (
		language string
		asJSON   bool
		document bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze a report from a text file, a PDF or image, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			fileType := documentType(path)
			isDocument := document || fileType != ""

			appOpts := []app.Option{app.WithoutFeedback()}
			if !isDocument {
				appOpts = append(appOpts, app.WithoutExtraction())
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := buildApp(ctx, root, appOpts...)
			if err != nil {
				return err
			}
			defer a.Close()

			var result *domain.AnalysisResult
			if isDocument {
				if fileType == "" {
					fileType = "application/pdf"
				}
				result, err = a.Reports.AnalyzeDocument(ctx, data, fileType, language)
			} else {
				result, err = a.Reports.AnalyzeText(ctx, string(data), language)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printAnalysis(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", domain.DefaultLanguage, "explanation language code")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&document, "document", false, "treat stdin as a PDF document")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// documentType maps a file extension to the MIME type the extractor
// expects. Plain text files return "".
func documentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return ""
	}
}

func printAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	if result.Error != "" {
		fmt.Fprintln(w, result.Error)
		return nil
	}
	if len(result.Tests) == 0 {
		fmt.Fprintln(w, "No recognised tests found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tVALUE\tNORMAL RANGE\tSTATUS")
	for _, t := range result.Tests {
		fmt.Fprintf(tw, "%s\t%g %s\t%g - %g\t%s\n",
			t.TestName, t.PatientValue, t.Unit, t.NormalRange.Low, t.NormalRange.High, strings.ToUpper(string(t.Status)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, t := range result.Tests {
		fmt.Fprintf(w, "%s: %s\n", t.TestName, t.Explanation)
	}
	return nil
}

func testsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tests",
		Short: "List the reference tests the analyzer recognises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), root, app.WithoutFeedback(), app.WithoutExtraction())
			if err != nil {
				return err
			}
			defer a.Close()

			refs := a.Reports.References()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), refs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tUNIT\tNORMAL RANGE\tALIASES")
			for _, ref := range refs {
				fmt.Fprintf(tw, "%s\t%s\t%g - %g\t%s\n",
					ref.Name, ref.Unit, ref.NormalRange.Low, ref.NormalRange.High, strings.Join(ref.Aliases, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print references as JSON")
	return cmd
}

func translateCmd(root *rootOptions) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate strings with the configured provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := buildApp(ctx, root, app.WithoutFeedback(), app.WithoutExtraction())
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Reports.TranslateTexts(ctx, args, language)
			if err != nil {
				return err
			}
			for _, s := range out {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "target language code")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}
