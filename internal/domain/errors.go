package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	// ErrUpstream marks a failure of a third-party API (meal catalog or
	// nutrition lookup) as opposed to a local one.
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError reports which request field was rejected. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
