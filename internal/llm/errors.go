package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// ErrorKind classifies generation failures. All kinds are handled the same way
// by callers (retry-or-fail) but are reported separately in logs and failures.
type ErrorKind string

const (
	// KindTimeout means the call exceeded its deadline
	KindTimeout ErrorKind = "timeout"
	// KindRateLimited means the provider rejected the call for quota reasons
	KindRateLimited ErrorKind = "rate_limited"
	// KindMalformed means the provider answered but the output was unusable
	KindMalformed ErrorKind = "malformed_output"
	// KindCanceled means the caller went away before the call finished
	KindCanceled ErrorKind = "canceled"
	// KindUnavailable covers every other provider or transport failure
	KindUnavailable ErrorKind = "unavailable"
)

// GenerationError is returned by every Generator implementation.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// KindOf returns the classified kind of err, or "" if err is not a generation failure.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// wrapProviderError turns a raw SDK/transport error into a GenerationError.
func wrapProviderError(message string, err error) error {
	return &GenerationError{Kind: Classify(err), Message: message, Cause: err}
}

// malformed builds a GenerationError for unusable provider output.
func malformed(message string) error {
	return &GenerationError{Kind: KindMalformed, Message: message}
}

// Classify maps a provider or transport error to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if kind := KindOf(err); kind != "" {
		return kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return kindFromStatus(apiErr.Code)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return kindFromStatus(gErr.Code)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	// The gRPC transport used by generative-ai-go only exposes status codes in the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "DeadlineExceeded"), strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(msg, "code = Canceled"), strings.Contains(msg, "context canceled"):
		return KindCanceled
	case strings.Contains(msg, "ResourceExhausted"), strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "429"), strings.Contains(strings.ToLower(msg), "quota"):
		return KindRateLimited
	}
	return KindUnavailable
}

func kindFromStatus(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return KindTimeout
	default:
		return KindUnavailable
	}
}
