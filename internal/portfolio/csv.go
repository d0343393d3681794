package portfolio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/cold-outreach/internal/skills"
	"github.com/jonathan/cold-outreach/internal/types"
)

// Catalog column headers. Matching is case-insensitive.
const (
	ColumnTechstack = "Techstack"
	ColumnLinks     = "Links"
)

// CSVSource reads the catalog from a local CSV file with a Techstack,Links
// header. Techstack holds a comma-separated skill list.
type CSVSource struct {
	Path string
}

// Rows reads and parses the file.
func (s *CSVSource) Rows(_ context.Context) ([]types.PortfolioEntry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return rows, nil
}

// ParseCSV parses a Techstack,Links catalog. Extra columns are ignored.
func ParseCSV(r io.Reader) ([]types.PortfolioEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	stackCol, linkCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, ColumnTechstack):
			stackCol = i
		case strings.EqualFold(name, ColumnLinks):
			linkCol = i
		}
	}
	if stackCol < 0 || linkCol < 0 {
		return nil, fmt.Errorf("catalog header must contain %s and %s columns, got %v", ColumnTechstack, ColumnLinks, header)
	}

	var rows []types.PortfolioEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}
		if stackCol >= len(record) || linkCol >= len(record) {
			return nil, fmt.Errorf("catalog line %d has %d fields", line, len(record))
		}
		rows = append(rows, types.PortfolioEntry{
			Skills: skills.Split(record[stackCol]),
			Link:   strings.TrimSpace(record[linkCol]),
		})
	}
	return rows, nil
}
