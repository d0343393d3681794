package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cold-outreach/internal/extraction"
	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/portfolio"
	"github.com/jonathan/cold-outreach/internal/schemas"
)

func TestHTTPStatus(t *testing.T) {
	genErr := &llm.GenerationError{Kind: llm.KindRateLimited, Message: "quota"}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "url", Message: "required"}, http.StatusBadRequest},
		{"empty input", pipeline.ErrEmptyInput, http.StatusBadRequest},
		{"fetch", &pipeline.FetchError{URL: "https://jobs.example.com", Message: "failed", Cause: errors.New("refused")}, http.StatusBadGateway},
		{"extraction output invalid", &extraction.ExtractionError{
			Message: "schema", Raw: "not json", Attempts: 3,
			Cause: &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "(root)", Message: "invalid"}}},
		}, http.StatusUnprocessableEntity},
		{"extraction empty output", &extraction.ExtractionError{
			Message: "schema", Attempts: 3,
			Cause:   &llm.GenerationError{Kind: llm.KindMalformed, Message: "no candidates"},
		}, http.StatusUnprocessableEntity},
		{"extraction generation failed", &extraction.ExtractionError{Message: "generation failed", Attempts: 1, Cause: genErr}, http.StatusBadGateway},
		{"generation", genErr, http.StatusBadGateway},
		{"wrapped generation", fmt.Errorf("extract: %w", genErr), http.StatusBadGateway},
		{"retrieval", &portfolio.RetrievalError{Message: "not loaded"}, http.StatusServiceUnavailable},
		{"unknown", context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	err := &extraction.ExtractionError{
		Message: "generation failed",
		Cause:   &llm.GenerationError{Kind: llm.KindTimeout, Message: "deadline"},
	}

	body := NewErrorBody(err)
	assert.Equal(t, "could not extract job postings", body.Error)
	assert.Equal(t, err.Error(), body.Cause)
	assert.Equal(t, string(llm.KindTimeout), body.Kind)
}

func TestErrValidation_Error(t *testing.T) {
	err := &ErrValidation{Field: "top_k", Message: "too large"}
	assert.Equal(t, "validation error: top_k - too large", err.Error())
}
