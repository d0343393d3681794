package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/cold-outreach/internal/composer"
	"github.com/jonathan/cold-outreach/internal/config"
	"github.com/jonathan/cold-outreach/internal/db"
	"github.com/jonathan/cold-outreach/internal/extraction"
	"github.com/jonathan/cold-outreach/internal/ingestion"
	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/portfolio"
)

// app holds the long-lived collaborators built from a Config.
type app struct {
	cfg       *config.Config
	database  *db.DB // nil without DATABASE_URL
	generator llm.Generator
	index     *portfolio.Index
	pipeline  *pipeline.Pipeline
}

// loadConfig reads the effective configuration and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectDB opens the database when one is configured.
func connectDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// portfolioSource picks the catalog backend named by the config.
func portfolioSource(ctx context.Context, cfg *config.Config, database *db.DB) (portfolio.Source, error) {
	switch cfg.PortfolioSource {
	case config.SourceS3:
		return portfolio.NewS3Source(ctx, cfg.PortfolioS3URI, cfg.S3Endpoint)
	case config.SourceDB:
		if database == nil {
			return nil, fmt.Errorf("portfolio_source db requires a database_url")
		}
		return portfolio.SourceFunc(database.PortfolioRows), nil
	default:
		return &portfolio.CSVSource{Path: cfg.PortfolioCSV}, nil
	}
}

// newIndexApp builds only what the portfolio commands need.
func newIndexApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, database: database}

	source, err := portfolioSource(ctx, cfg, database)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.index = portfolio.NewIndex(source)
	a.index.LoadTimeout = cfg.CatalogTimeout.Std()
	return a, nil
}

// newApp builds the full pipeline.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required (set GEMINI_API_KEY or api_key in the config)")
	}

	a, err := newIndexApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.generator, err = llm.NewGenerator(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	extractor := extraction.New(a.generator)
	extractor.MaxRetries = cfg.Retries()
	extractor.Timeout = cfg.GenTimeout.Std()

	comp := composer.New(a.generator, cfg.Sender)
	comp.Timeout = cfg.GenTimeout.Std()
	comp.ForbiddenPhrases = cfg.ForbiddenPhrases

	a.pipeline = &pipeline.Pipeline{
		Loader:           ingestion.NewLoader(cfg.FetchTimeout.Std(), cfg.UseBrowser, cfg.Verbose),
		Extractor:        extractor,
		Retriever:        a.index,
		Composer:         comp,
		TopK:             cfg.TopK,
		JobTimeout:       cfg.JobTimeout.Std(),
		ReloadPerRequest: cfg.ReloadPerRequest,
	}
	if a.database != nil {
		a.pipeline.Recorder = a.database
	}
	return a, nil
}

// Close releases the generator and database.
func (a *app) Close() {
	if a.generator != nil {
		if err := a.generator.Close(); err != nil {
			log.Printf("Warning: failed to close generation client: %v", err)
		}
	}
	if a.database != nil {
		a.database.Close()
	}
}
