package trends

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a fetcher lacks credentials or no fetcher is set.
var ErrNotConfigured = errors.New("trend source not configured")

// ErrNoData is returned when a keyword has no series.
var ErrNoData = errors.New("no trend data")

// FetchError represents an upstream trend provider failure.
type FetchError struct {
	Fetcher    string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("trends error: %s: %s: %v", e.Fetcher, msg, e.Cause)
	}
	return fmt.Sprintf("trends error: %s: %s", e.Fetcher, msg)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
