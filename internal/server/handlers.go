package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cold-outreach/internal/db"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/skills"
)

const maxRequestBody = 2 << 20

// GenerateRequest is the body of /generate-email. Exactly one of URL and Text is set.
type GenerateRequest struct {
	URL  string `json:"url" validate:"required_without=Text,excluded_with=Text"`
	Text string `json:"text" validate:"required_without=URL,excluded_with=URL"`
	TopK int    `json:"top_k" validate:"gte=0,lte=10"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status           string `json:"status"`
	PortfolioEntries int    `json:"portfolio_entries"`
}

// decodeGenerate reads and validates a GenerateRequest.
func (s *Server) decodeGenerate(w http.ResponseWriter, r *http.Request) (pipeline.Input, error) {
	var req GenerateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return pipeline.Input{}, &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return pipeline.Input{}, &ErrValidation{Field: "body", Message: err.Error()}
	}

	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return pipeline.Input{}, &ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
		}
		return pipeline.Input{}, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if req.URL != "" {
		if err := s.validate.Var(req.URL, "http_url"); err != nil {
			return pipeline.Input{}, &ErrValidation{Field: "URL", Message: "must be an http or https URL"}
		}
	}

	return pipeline.Input{URL: req.URL, Text: req.Text, TopK: req.TopK}, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without":
		return "one of url or text is required"
	case "excluded_with":
		return "url and text are mutually exclusive"
	default:
		return "failed on " + fe.Tag()
	}
}

// handleGenerate runs the pipeline and returns every email and failure.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeGenerate(w, r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	result, err := s.pipeline.Run(r.Context(), in)
	if err != nil {
		log.Printf("[server] generate failed: %v", err)
		s.failResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs the pipeline and streams progress via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeGenerate(w, r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The shared pipeline is copied so the callback stays per request
	p := *s.pipeline
	p.OnProgress = func(event pipeline.ProgressEvent) {
		_ = stream.send(eventStep, event)
	}

	result, err := p.Run(r.Context(), in)
	if err != nil {
		log.Printf("[server] streaming generate failed: %v", err)
		_ = stream.send(eventError, NewErrorBody(err))
		return
	}
	_ = stream.send(eventResult, result)
}

// handlePortfolioReload re-reads the catalog.
func (s *Server) handlePortfolioReload(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolio.Load(r.Context()); err != nil {
		log.Printf("[server] portfolio reload failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, NewErrorBody(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"entries": s.portfolio.Len()})
}

// handlePortfolioQuery ranks catalog links for ?skills=a,b&k=3.
func (s *Server) handlePortfolioQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	k := s.pipeline.TopK
	if k <= 0 {
		k = pipeline.DefaultTopK
	}
	if raw := query.Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.failResponse(w, &ErrValidation{Field: "k", Message: "must be a non-negative integer"})
			return
		}
		k = parsed
	}

	result, err := s.portfolio.Query(skills.Split(query.Get("skills")), k)
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleListHistory lists recent runs.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotFound, "history disabled")
		return
	}

	limit := db.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.failResponse(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = parsed
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetHistory returns one stored run.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotFound, "history disabled")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	run, err := s.history.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		PortfolioEntries: s.portfolio.Len(),
	})
}
