package types

import (
	"time"

	"github.com/google/uuid"
)

// OutreachEmail is the composed email for one job record.
type OutreachEmail struct {
	Role    string   `json:"job_title"`
	Subject string   `json:"subject,omitempty"`
	Body    string   `json:"email"`
	Links   []string `json:"links,omitempty"` // portfolio links supplied to the composer
}

// Failure stages for a single job.
const (
	StageRetrieval   = "retrieval"
	StageComposition = "composition"
)

// JobFailure records why a single job produced no email.
type JobFailure struct {
	Role   string `json:"job_title"`
	Stage  string `json:"stage"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
}

// PipelineResult is the aggregated outcome of one request.
// Emails and Failures together account for every extracted job.
type PipelineResult struct {
	RunID     uuid.UUID       `json:"run_id"`
	SourceURL string          `json:"source_url,omitempty"`
	JobsFound int             `json:"jobs_found"`
	Emails    []OutreachEmail `json:"emails"`
	Failures  []JobFailure    `json:"failures"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPipelineResult returns an empty result with a fresh run ID.
func NewPipelineResult(sourceURL string) *PipelineResult {
	return &PipelineResult{
		RunID:     uuid.New(),
		SourceURL: sourceURL,
		Emails:    []OutreachEmail{},
		Failures:  []JobFailure{},
		CreatedAt: time.Now().UTC(),
	}
}
