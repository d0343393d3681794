package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-outreach/internal/config"
	"github.com/jonathan/cold-outreach/internal/observability"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/portfolio"
	"github.com/jonathan/cold-outreach/internal/types"
)

func TestPortfolioSource(t *testing.T) {
	ctx := context.Background()

	cfg := config.Defaults()
	cfg.PortfolioCSV = "catalog.csv"
	src, err := portfolioSource(ctx, &cfg, nil)
	require.NoError(t, err)
	csvSrc, ok := src.(*portfolio.CSVSource)
	require.True(t, ok)
	assert.Equal(t, "catalog.csv", csvSrc.Path)

	cfg.PortfolioSource = config.SourceDB
	_, err = portfolioSource(ctx, &cfg, nil)
	assert.Error(t, err, "db source needs a database")
}

func TestNewApp_RequiresAPIKey(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = ""

	_, err := newApp(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewIndexApp_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	require.NoError(t, os.WriteFile(path, []byte("Techstack,Links\n\"Python, Django\",https://example.com/python-portfolio\n"), 0644))

	cfg := config.Defaults()
	cfg.PortfolioCSV = path

	a, err := newIndexApp(context.Background(), &cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.index.Load(context.Background()))
	assert.Equal(t, 1, a.index.Len())
	assert.Nil(t, a.database)
}

func TestVerboseProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := verboseProgress(observability.NewPrinter(&buf))

	progress(pipeline.ProgressEvent{Step: pipeline.StepNormalized, Message: "Normalized page text (10 chars)"})
	progress(pipeline.ProgressEvent{Step: pipeline.StepExtracted, Content: []types.JobRecord{{Role: "Backend Engineer"}}})
	progress(pipeline.ProgressEvent{
		Step:    pipeline.StepRetrieved,
		Role:    "Backend Engineer",
		Content: types.RetrievalResult{Links: []string{"https://example.com/a"}},
	})

	output := buf.String()
	assert.Contains(t, output, "[normalized] Normalized page text (10 chars)")
	assert.Contains(t, output, "EXTRACTED JOB POSTINGS (1)")
	assert.Contains(t, output, "PORTFOLIO MATCHES: Backend Engineer")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	result := types.NewPipelineResult("https://jobs.example.com")

	require.NoError(t, writeJSON(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.PipelineResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, result.RunID, got.RunID)
}
