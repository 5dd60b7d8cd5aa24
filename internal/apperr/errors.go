// Package apperr defines the error taxonomy shared by the store, services
// and HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an id, slug or username does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by the store when a unique constraint is violated.
	ErrConflict = errors.New("conflict")

	// ErrUnauthenticated is returned when credentials are missing or invalid.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

	// ErrForbidden is returned when a valid identity lacks the capability.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// NonFieldErrors is the key used for errors not bound to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries field-level messages for malformed or duplicate input.
type ValidationError struct {
	Fields map[string][]string
}

// Validation returns a ValidationError with a single message.
func Validation(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}

// Add appends a message for field and returns e for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// Empty reports whether no messages were added.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when it holds no messages.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// NotFound wraps ErrNotFound with the kind of thing that was missing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
