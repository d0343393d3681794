package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cold-outreach/internal/extraction"
	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/pipeline"
	"github.com/jonathan/cold-outreach/internal/portfolio"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Cause string `json:"cause,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// NewErrorBody summarizes err for a client.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Error: summary(err), Cause: err.Error()}
	if kind := llm.KindOf(err); kind != "" {
		body.Kind = string(kind)
	}
	return body
}

func summary(err error) string {
	var (
		valErr   *ErrValidation
		fetchErr *pipeline.FetchError
		extErr   *extraction.ExtractionError
		retErr   *portfolio.RetrievalError
	)
	switch {
	case errors.As(err, &valErr), errors.Is(err, pipeline.ErrEmptyInput):
		return "invalid request"
	case errors.As(err, &fetchErr):
		return "could not load the careers page"
	case errors.As(err, &extErr):
		return "could not extract job postings"
	case errors.As(err, &retErr):
		return "portfolio unavailable"
	case llm.KindOf(err) != "":
		return "generation service failed"
	default:
		return "internal error"
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		valErr   *ErrValidation
		fetchErr *pipeline.FetchError
		extErr   *extraction.ExtractionError
		retErr   *portfolio.RetrievalError
	)
	switch {
	case errors.As(err, &valErr), errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &extErr):
		// the model answered, but never with a usable job list
		if extErr.Raw != "" || llm.KindOf(err) == llm.KindMalformed {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case errors.As(err, &retErr):
		return http.StatusServiceUnavailable
	case llm.KindOf(err) != "":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
