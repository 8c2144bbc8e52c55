package jobs

import "fmt"

// ErrJobNotFound is returned by Poll for unknown or evicted ids.
type ErrJobNotFound struct {
	ID string
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("search job not found: %s", e.ID)
}

// ErrValidation is returned by Submit when the request is rejected.
type ErrValidation struct {
	Message string
	Cause   error
}

func (e *ErrValidation) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid search request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid search request: %s", e.Message)
}

func (e *ErrValidation) Unwrap() error {
	return e.Cause
}
