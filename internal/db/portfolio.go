package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cold-outreach/internal/skills"
	"github.com/jonathan/cold-outreach/internal/types"
)

// PortfolioRows reads the whole catalog in insertion order. It satisfies
// portfolio.Source.
func (db *DB) PortfolioRows(ctx context.Context) ([]types.PortfolioEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT techstack, link FROM portfolio_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}
	defer rows.Close()

	var entries []types.PortfolioEntry
	for rows.Next() {
		var techstack, link string
		if err := rows.Scan(&techstack, &link); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio entry: %w", err)
		}
		entries = append(entries, entryFromRow(techstack, link))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read portfolio: %w", err)
	}
	return entries, nil
}

// ReplacePortfolio swaps the stored catalog for entries in one transaction.
func (db *DB) ReplacePortfolio(ctx context.Context, entries []types.PortfolioEntry) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM portfolio_entries`); err != nil {
		return fmt.Errorf("failed to clear portfolio: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"portfolio_entries"},
		[]string{"techstack", "link"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			return []any{techstackColumn(entries[i].Skills), entries[i].Link}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return nil
}

// entryFromRow uses the same comma-separated techstack format as the CSV catalog.
func entryFromRow(techstack, link string) types.PortfolioEntry {
	return types.PortfolioEntry{
		Skills: skills.Split(techstack),
		Link:   strings.TrimSpace(link),
	}
}

func techstackColumn(list []string) string {
	return strings.Join(list, ", ")
}
