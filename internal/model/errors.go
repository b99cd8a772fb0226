package model

import "fmt"

// ValidationError reports an input field that cannot be evaluated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Invalid builds a ValidationError for callers outside this package.
func Invalid(field, reason string) error {
	return invalid(field, reason)
}
