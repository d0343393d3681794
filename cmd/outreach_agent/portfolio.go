package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-outreach/internal/observability"
	"github.com/jonathan/cold-outreach/internal/portfolio"
	"github.com/jonathan/cold-outreach/internal/skills"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Inspect and manage the portfolio catalog",
}

var portfolioQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Rank catalog links for a set of skills",
	RunE:  runPortfolioQuery,
}

var portfolioReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Load the catalog and report how many entries are usable",
	RunE:  runPortfolioReload,
}

var portfolioImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the database catalog with the rows of a CSV file",
	RunE:  runPortfolioImport,
}

var (
	querySkills string
	queryK      int
	queryJSON   bool
	importCSV   string
)

func init() {
	portfolioQueryCmd.Flags().StringVarP(&querySkills, "skills", "s", "", "Comma-separated skills")
	portfolioQueryCmd.Flags().IntVar(&queryK, "k", 3, "Maximum number of links")
	portfolioQueryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the result as JSON")
	_ = portfolioQueryCmd.MarkFlagRequired("skills")

	portfolioImportCmd.Flags().StringVar(&importCSV, "csv", "", "CSV file with Techstack and Links columns")
	_ = portfolioImportCmd.MarkFlagRequired("csv")

	portfolioCmd.AddCommand(portfolioQueryCmd, portfolioReloadCmd, portfolioImportCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolioQuery(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := loadIndex(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.index.Query(skills.Split(querySkills), queryK)
	if err != nil {
		return err
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	observability.NewPrinter(os.Stdout).PrintRetrieval(strings.Join(skills.Split(querySkills), ", "), result)
	return nil
}

func runPortfolioReload(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := loadIndex(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Loaded %d portfolio entries from %s\n", a.index.Len(), a.cfg.PortfolioSource)
	return nil
}

func runPortfolioImport(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	if database == nil {
		return fmt.Errorf("portfolio import requires DATABASE_URL")
	}
	defer database.Close()

	entries, err := (&portfolio.CSVSource{Path: importCSV}).Rows(ctx)
	if err != nil {
		return err
	}
	if err := database.ReplacePortfolio(ctx, entries); err != nil {
		return err
	}

	fmt.Printf("Imported %d portfolio entries\n", len(entries))
	return nil
}

func loadIndex(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := newIndexApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.index.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}
