package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cold-outreach/internal/types"
)

// DefaultHistoryLimit is the number of runs returned when no limit is given.
const DefaultHistoryLimit = 10

const maxHistoryLimit = 100

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID        uuid.UUID `json:"run_id"`
	SourceURL string    `json:"source_url,omitempty"`
	JobsFound int       `json:"jobs_found"`
	Emails    int       `json:"emails"`
	Failures  int       `json:"failures"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRun stores a finished pipeline result. Saving the same run twice
// overwrites the earlier copy.
func (db *DB) SaveRun(ctx context.Context, result *types.PipelineResult) error {
	emails, err := json.Marshal(result.Emails)
	if err != nil {
		return fmt.Errorf("failed to marshal emails: %w", err)
	}
	failures, err := json.Marshal(result.Failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO outreach_runs (id, source_url, jobs_found, emails, failures, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET source_url = $2, jobs_found = $3, emails = $4, failures = $5`,
		result.RunID, result.SourceURL, result.JobsFound, emails, failures, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a stored run by ID. Returns nil, nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.PipelineResult, error) {
	var result types.PipelineResult
	var emails, failures []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_url, jobs_found, emails, failures, created_at
		 FROM outreach_runs WHERE id = $1`,
		runID,
	).Scan(&result.RunID, &result.SourceURL, &result.JobsFound, &emails, &failures, &result.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := decodeRunBody(&result, emails, failures); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, source_url, jobs_found,
		        jsonb_array_length(emails), jsonb_array_length(failures), created_at
		 FROM outreach_runs ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.ID, &run.SourceURL, &run.JobsFound, &run.Emails, &run.Failures, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeRunBody(result *types.PipelineResult, emails, failures []byte) error {
	result.Emails = []types.OutreachEmail{}
	result.Failures = []types.JobFailure{}
	if len(emails) > 0 {
		if err := json.Unmarshal(emails, &result.Emails); err != nil {
			return fmt.Errorf("failed to decode stored emails: %w", err)
		}
	}
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &result.Failures); err != nil {
			return fmt.Errorf("failed to decode stored failures: %w", err)
		}
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}
