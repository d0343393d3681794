package portfolio

import "fmt"

// RetrievalError is returned when the catalog cannot be loaded or queried.
type RetrievalError struct {
	Message string
	Cause   error
}

func (e *RetrievalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("portfolio retrieval: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("portfolio retrieval: %s", e.Message)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}
