// Package pipeline orchestrates one outreach request: fetch the listing page,
// extract job postings, then retrieve portfolio links and compose an email
// for each posting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/cold-outreach/internal/composer"
	"github.com/jonathan/cold-outreach/internal/ingestion"
	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/types"
)

// Step names reported in progress events.
const (
	StepFetched    = "fetched"
	StepNormalized = "normalized"
	StepExtracted  = "extracted"
	StepRetrieved  = "retrieved"
	StepComposed   = "composed"
	StepJobFailed  = "job_failed"
	StepAggregated = "aggregated"
)

// Step categories.
const (
	CategoryIngestion  = "ingestion"
	CategoryExtraction = "extraction"
	CategoryJob        = "job"
)

// DefaultTopK is the number of portfolio links retrieved per job.
const DefaultTopK = 2

// ErrEmptyInput is returned when neither a URL nor page text was supplied.
var ErrEmptyInput = errors.New("either a url or page text is required")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Role     string `json:"job_title,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// PageLoader fetches a listing page and returns its text.
type PageLoader interface {
	Load(ctx context.Context, url string) (string, *ingestion.Metadata, error)
}

// JobExtractor turns normalized page text into job records.
type JobExtractor interface {
	Extract(ctx context.Context, text string) ([]types.JobRecord, error)
}

// Retriever returns portfolio links for a skill set.
type Retriever interface {
	Query(skills []string, k int) (types.RetrievalResult, error)
}

// Reloader is implemented by retrievers that can refresh their catalog.
type Reloader interface {
	Load(ctx context.Context) error
}

// EmailComposer writes one outreach email.
type EmailComposer interface {
	Compose(ctx context.Context, job types.JobRecord, links types.RetrievalResult) (types.OutreachEmail, error)
}

// Recorder persists finished runs.
type Recorder interface {
	SaveRun(ctx context.Context, result *types.PipelineResult) error
}

// Input is a single request. Text takes precedence over URL.
type Input struct {
	URL  string
	Text string
	TopK int // overrides Pipeline.TopK when positive
}

// Pipeline wires the collaborators for one or more requests. A Pipeline holds
// no per-request state and may be shared between goroutines.
type Pipeline struct {
	Loader    PageLoader
	Extractor JobExtractor
	Retriever Retriever
	Composer  EmailComposer

	TopK             int
	JobTimeout       time.Duration
	ReloadPerRequest bool

	Recorder   Recorder // optional
	OnProgress ProgressCallback
}

// emitProgress calls the progress callback if configured
func (p *Pipeline) emitProgress(runID, step, category, role, message string, content any) {
	if p.OnProgress != nil {
		p.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Role:     role,
			Content:  content,
		})
	}
}

// Run processes one request. Request-level failures (fetch, extraction) are
// returned as errors; per-job failures are reported in the result.
func (p *Pipeline) Run(ctx context.Context, in Input) (*types.PipelineResult, error) {
	result := types.NewPipelineResult(in.URL)
	runID := result.RunID.String()

	raw, err := p.pageText(ctx, in, runID)
	if err != nil {
		return nil, err
	}

	text := ingestion.NormalizePage(raw)
	p.emitProgress(runID, StepNormalized, CategoryIngestion, "",
		fmt.Sprintf("Normalized page text (%d chars)", len(text)), nil)

	if text == "" {
		log.Printf("[pipeline] %s: page has no text, nothing to extract", runID)
		p.finish(ctx, result)
		return result, nil
	}

	jobs, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		log.Printf("[pipeline] %s: extraction failed: %v", runID, err)
		return nil, err
	}
	result.JobsFound = len(jobs)
	p.emitProgress(runID, StepExtracted, CategoryExtraction, "",
		fmt.Sprintf("Extracted %d job postings", len(jobs)), jobs)

	if len(jobs) > 0 && p.ReloadPerRequest {
		p.reload(ctx, runID)
	}

	topK := p.TopK
	if in.TopK > 0 {
		topK = in.TopK
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	for _, job := range jobs {
		email, failure := p.runJob(ctx, runID, job, topK)
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			continue
		}
		result.Emails = append(result.Emails, email)
	}

	p.finish(ctx, result)
	return result, nil
}

func (p *Pipeline) pageText(ctx context.Context, in Input, runID string) (string, error) {
	if in.Text != "" {
		return in.Text, nil
	}
	if in.URL == "" {
		return "", ErrEmptyInput
	}
	if p.Loader == nil {
		return "", &FetchError{URL: in.URL, Message: "no page loader configured"}
	}

	raw, meta, err := p.Loader.Load(ctx, in.URL)
	if err != nil {
		log.Printf("[pipeline] %s: fetch %s failed: %v", runID, in.URL, err)
		return "", &FetchError{URL: in.URL, Message: "failed to load page", Cause: err}
	}
	p.emitProgress(runID, StepFetched, CategoryIngestion, "",
		fmt.Sprintf("Fetched %s (%d chars, %s)", in.URL, len(raw), meta.ShortHash()), meta)
	return raw, nil
}

// reload refreshes the catalog. A failure keeps the previous snapshot.
func (p *Pipeline) reload(ctx context.Context, runID string) {
	r, ok := p.Retriever.(Reloader)
	if !ok {
		return
	}
	if err := r.Load(ctx); err != nil {
		log.Printf("[pipeline] %s: portfolio reload failed, using previous snapshot: %v", runID, err)
	}
}

func (p *Pipeline) runJob(ctx context.Context, runID string, job types.JobRecord, topK int) (types.OutreachEmail, *types.JobFailure) {
	if p.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.JobTimeout)
		defer cancel()
	}

	links, err := p.Retriever.Query(job.Skills, topK)
	if err != nil {
		return types.OutreachEmail{}, p.fail(runID, job, types.StageRetrieval, err)
	}
	p.emitProgress(runID, StepRetrieved, CategoryJob, job.Role,
		fmt.Sprintf("Retrieved %d portfolio links", len(links.Links)), links)

	email, err := p.Composer.Compose(ctx, job, links)
	if err != nil {
		return types.OutreachEmail{}, p.fail(runID, job, types.StageComposition, err)
	}
	p.emitProgress(runID, StepComposed, CategoryJob, job.Role, "Composed email", email)
	return email, nil
}

func (p *Pipeline) fail(runID string, job types.JobRecord, stage string, err error) *types.JobFailure {
	failure := &types.JobFailure{
		Role:   job.Role,
		Stage:  stage,
		Kind:   failureKind(err),
		Reason: err.Error(),
	}
	log.Printf("[pipeline] %s: job %q failed at %s (%s): %v", runID, job.Role, stage, failure.Kind, err)
	p.emitProgress(runID, StepJobFailed, CategoryJob, job.Role,
		fmt.Sprintf("Failed at %s", stage), failure)
	return failure
}

func failureKind(err error) string {
	var compErr *composer.CompositionError
	if errors.As(err, &compErr) && compErr.Kind != "" {
		return compErr.Kind
	}
	if kind := llm.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return string(llm.KindTimeout)
	}
	return ""
}

// finish emits the final event and records the run. Recording never fails a request.
func (p *Pipeline) finish(ctx context.Context, result *types.PipelineResult) {
	runID := result.RunID.String()
	p.emitProgress(runID, StepAggregated, CategoryJob, "",
		fmt.Sprintf("%d emails, %d failures", len(result.Emails), len(result.Failures)), nil)

	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.SaveRun(ctx, result); err != nil {
		log.Printf("[pipeline] %s: warning: failed to record run: %v", runID, err)
	}
}
