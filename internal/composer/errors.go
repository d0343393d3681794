package composer

import "fmt"

// KindFabricatedLink marks an email that cites a URL it was not given.
const KindFabricatedLink = "fabricated_link"

// CompositionError is returned when no acceptable email could be produced
// for a job. Kind is one of the llm error kinds, KindFabricatedLink,
// KindPlaceholder or KindForbiddenPhrase.
type CompositionError struct {
	Kind    string
	Message string
	Cause   error
}

func (e *CompositionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("composition failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("composition failed (%s): %s", e.Kind, e.Message)
}

func (e *CompositionError) Unwrap() error {
	return e.Cause
}
