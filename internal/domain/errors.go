package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo functions when the requested resource does
// not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, field too long).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSlugConflict is returned by repo functions when a write collides with an
// existing slug on the unique index.
var ErrSlugConflict = errors.New("slug already taken")

// KindValidation is the error kind carried by every ValidationError.
const KindValidation = "VALIDATION_ERROR"

// ValidationError describes a rejected field so a form can highlight it.
// MaxLength and ActualLength are set only for length-based failures.
// It unwraps to ErrValidation, so errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Kind         string
	Field        string
	Message      string
	MaxLength    int
	ActualLength int
}

// NewValidationError builds a ValidationError for a non-length failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Kind: KindValidation, Field: field, Message: message}
}

// NewLengthError builds a ValidationError for a value over its length cap.
func NewLengthError(field string, maxLen, actual int) *ValidationError {
	return &ValidationError{
		Kind:         KindValidation,
		Field:        field,
		Message:      fmt.Sprintf("%s is too long (%d characters); the maximum is %d", field, actual, maxLen),
		MaxLength:    maxLen,
		ActualLength: actual,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsLengthError reports whether the failure carries length detail.
func (e *ValidationError) IsLengthError() bool {
	return e.MaxLength > 0
}
