// Package apperr defines the error kinds shared by every feature package.
// Feature errors wrap one of the kinds so the transport layer can map them
// to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already in use")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a ValidationError for the given field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// NotFound returns an error of kind ErrNotFound, e.g. NotFound("group")
// reads "group not found".
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Conflict returns an error of kind ErrConflict, e.g. Conflict("phone number")
// reads "phone number already in use".
func Conflict(what string) error {
	return fmt.Errorf("%s %w", what, ErrConflict)
}
