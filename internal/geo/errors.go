package geo

import "fmt"

// RegistryError represents a failure loading the gazetteer or source registry
type RegistryError struct {
	Message string
	Cause   error
}

func (e *RegistryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("geo registry error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("geo registry error: %s", e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Cause
}
