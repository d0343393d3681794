package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-outreach/internal/ingestion"
	"github.com/jonathan/cold-outreach/internal/observability"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate outreach emails for a careers page",
	Long: `Fetches a careers page (--url) or reads a saved page (--in), extracts every
job posting, and prints one email per posting followed by any per-job failures.`,
	RunE: runGenerate,
}

var (
	genURL        string
	genInput      string
	genTopK       int
	genOutput     string
	genJSON       bool
	genVerbose    bool
	genUseBrowser bool
)

func init() {
	generateCmd.Flags().StringVar(&genURL, "url", "", "Careers page URL (mutually exclusive with --in)")
	generateCmd.Flags().StringVarP(&genInput, "in", "i", "", "Path to a saved careers page (.html, .md or .txt)")
	generateCmd.Flags().IntVarP(&genTopK, "top-k", "k", 0, "Portfolio links per email (overrides config)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "Write the result as JSON to this file")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the result as JSON")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print each step as it happens")
	generateCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Render client-side job boards in headless Chrome")
	generateCmd.MarkFlagsMutuallyExclusive("url", "in")
	generateCmd.MarkFlagsOneRequired("url", "in")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genVerbose {
		cfg.Verbose = true
	}
	if genUseBrowser {
		cfg.UseBrowser = true
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(ctx); err != nil {
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	in := pipeline.Input{URL: genURL, TopK: genTopK}
	if genInput != "" {
		text, _, err := ingestion.IngestFromFile(genInput)
		if err != nil {
			return err
		}
		in.Text = text
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		a.pipeline.OnProgress = verboseProgress(printer)
	}

	result, err := a.pipeline.Run(ctx, in)
	if err != nil {
		return err
	}

	if genOutput != "" {
		if err := writeJSON(genOutput, result); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", genOutput)
	}

	if genJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printer.PrintResult(result)
	return nil
}

// verboseProgress prints progress lines and the intermediate artifacts.
func verboseProgress(printer *observability.Printer) pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		switch content := event.Content.(type) {
		case []types.JobRecord:
			printer.PrintJobRecords(content)
		case types.RetrievalResult:
			printer.PrintRetrieval(event.Role, content)
		default:
			printer.PrintProgress(event.Step, event.Role, event.Message)
		}
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
