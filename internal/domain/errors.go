package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing credential or an unusable backend definition.
	ErrConfiguration = errors.New("configuration error")
	// ErrNoData is returned by analytics and reports when the history is empty.
	ErrNoData = errors.New("no data available")
	// ErrValidation rejects caller input before any service call or store mutation.
	ErrValidation = errors.New("invalid input")
)

// AnalysisError wraps a failed call to the analysis service.
type AnalysisError struct {
	Backend string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Backend == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError builds an AnalysisError whose message is taken from err.
func NewAnalysisError(backend string, err error) *AnalysisError {
	msg := "analysis failed"
	if err != nil {
		msg = err.Error()
	}
	return &AnalysisError{Backend: backend, Message: msg, Err: err}
}

// DegradedResult turns a failure into the text recorded in place of an analysis.
func DegradedResult(err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return fmt.Sprintf("%s %s\n\nPlease check your input and try again.", AnalysisErrorMarker, msg)
}
