package sources

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by adapters that are missing credentials.
var ErrNotConfigured = errors.New("source not configured")

// FetchError represents a failed request to an upstream news provider
type FetchError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s fetch error: %s", e.Source, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
