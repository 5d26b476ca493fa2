// Package apperr defines the error taxonomy shared by all subsystems.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a lookup, update, or delete targeted a key with
	// no matching row. Callers branch on presence, they do not treat it as a
	// fault.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an insert violated a uniqueness or foreign-key
	// constraint (e.g. a duplicate tag slug inserted concurrently). Callers
	// may retry-as-upsert.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists indicates an explicit create targeted a key that is
	// already present.
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError reports caller-supplied data that fails a domain rule the
// storage layer cannot express (vector length mismatch, event end before
// start, unknown entity type). Subsystems fail fast with it before any write.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Msg)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// Validation builds a ValidationError for the given field.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
