// Package extraction turns normalized careers-page text into job records.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/prompts"
	"github.com/jonathan/cold-outreach/internal/schemas"
	"github.com/jonathan/cold-outreach/internal/skills"
	"github.com/jonathan/cold-outreach/internal/types"
)

const (
	// DefaultMaxRetries is how many times an invalid or empty payload is re-requested.
	DefaultMaxRetries = 2
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 30 * time.Second
)

// Extractor asks the generation service for every posting on a page and
// accepts the answer only once it passes the job_records schema.
type Extractor struct {
	gen        llm.Generator
	MaxRetries int
	Timeout    time.Duration
	Tier       llm.ModelTier
}

// New creates an Extractor with default retry and timeout settings.
func New(gen llm.Generator) *Extractor {
	return &Extractor{
		gen:        gen,
		MaxRetries: DefaultMaxRetries,
		Timeout:    DefaultTimeout,
		Tier:       llm.TierStandard,
	}
}

// Extract returns the job postings in text in order of appearance.
// A page without postings yields an empty slice and no error.
func (e *Extractor) Extract(ctx context.Context, text string) ([]types.JobRecord, error) {
	if strings.TrimSpace(text) == "" {
		return []types.JobRecord{}, nil
	}

	prompt := buildPrompt(text)
	attempts := e.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var raw string
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := e.generate(ctx, prompt)
		if err != nil && llm.KindOf(err) == llm.KindMalformed {
			lastErr = err
			log.Printf("[extract] attempt %d/%d rejected: %v", attempt, attempts, err)
			continue
		}
		if err != nil {
			log.Printf("[extract] generation failed (%s): %v", llm.KindOf(err), err)
			return nil, &ExtractionError{
				Message:  "generation failed",
				Attempts: attempt,
				Cause:    err,
			}
		}

		raw = out
		records, err := decode(out)
		if err == nil {
			log.Printf("[extract] %d job(s) extracted on attempt %d", len(records), attempt)
			return records, nil
		}

		lastErr = err
		log.Printf("[extract] attempt %d/%d rejected: %v", attempt, attempts, err)
	}

	return nil, &ExtractionError{
		Message:  "model output did not match the job_records schema",
		Raw:      raw,
		Attempts: attempts,
		Cause:    lastErr,
	}
}

func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	return e.gen.Generate(ctx, llm.Request{Prompt: prompt, Tier: e.Tier, JSON: true})
}

func buildPrompt(text string) string {
	template := prompts.MustGet("extract-jobs")
	return prompts.Format(template, map[string]string{
		"Format":   llm.JobPostingsSchema().OutputFormat(),
		"PageText": text,
	})
}

// rawJob mirrors one element of the job_records schema.
type rawJob struct {
	Role        string    `json:"role"`
	Experience  *string   `json:"experience"`
	Skills      skillList `json:"skills"`
	Description string    `json:"description"`
}

// skillList accepts either a JSON array of strings or one delimited string.
type skillList []string

func (s *skillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("skills must be a list or a string: %w", err)
	}
	*s = []string{joined}
	return nil
}

// decode validates a raw model response and converts it to job records.
func decode(raw string) ([]types.JobRecord, error) {
	payload := wrapLoneObject(llm.CleanJSONBlock(raw))

	if err := schemas.Validate(schemas.JobRecords, payload); err != nil {
		return nil, err
	}

	var items []rawJob
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to decode job records: %w", err)
	}

	records := make([]types.JobRecord, 0, len(items))
	for i, item := range items {
		role := strings.Join(strings.Fields(item.Role), " ")
		if role == "" {
			log.Printf("[extract] dropping record %d of %d: role is blank", i+1, len(items))
			continue
		}

		record := types.JobRecord{
			Role:        role,
			Skills:      skills.NormalizeAll(splitDelimited(item.Skills)),
			Description: strings.TrimSpace(item.Description),
		}
		if item.Experience != nil {
			if exp := strings.TrimSpace(*item.Experience); exp != "" {
				record.Experience = &exp
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// splitDelimited expands entries such as "Go; Postgres" that the model
// sometimes packs into one array item.
func splitDelimited(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, skills.Split(item)...)
	}
	return out
}

// wrapLoneObject turns a single top-level object into a one-element array.
func wrapLoneObject(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") {
		return "[" + trimmed + "]"
	}
	return trimmed
}
