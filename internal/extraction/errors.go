package extraction

import "fmt"

// ExtractionError is returned when no valid job list could be obtained.
// Raw holds the last model output so the offending payload can be inspected.
// It is empty when the model returned nothing usable at all.
type ExtractionError struct {
	Message  string
	Raw      string
	Attempts int
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed after %d attempt(s): %s: %v", e.Attempts, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed after %d attempt(s): %s", e.Attempts, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
