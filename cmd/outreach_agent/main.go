// Package main provides the entry point for the cold outreach generator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Cold outreach email generator",
	Long: `outreach_agent reads a company's careers page, extracts each open position,
matches it against a portfolio of past work, and writes a cold email per position.

Configuration is read from --config (JSON or YAML), then environment variables
(GEMINI_API_KEY, DATABASE_URL, PORTFOLIO_CSV, PORTFOLIO_S3_URI, LLM_PROVIDER).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (.json, .yaml or .yml)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
