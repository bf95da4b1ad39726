// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds for vocabulary operations. Callers match them with errors.Is and
// render their own feedback; the core never produces user-facing phrasing.
var (
	// ErrEmptyInput is returned when a word, language or replacement text is blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrNotFound is returned when a referenced entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation would create a second active
	// entry with the same language and normalized key.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyMastered is returned when the word already lives in the
	// mastered registry.
	ErrAlreadyMastered = errors.New("already mastered")

	// ErrSelfReference is returned when an entry is linked to itself.
	ErrSelfReference = errors.New("self reference")

	// ErrLanguageMismatch is returned when a parent and child belong to
	// different languages.
	ErrLanguageMismatch = errors.New("language mismatch")

	// ErrDepthExceeded is returned when a link would create a parent chain
	// deeper than one level.
	ErrDepthExceeded = errors.New("depth exceeded")

	// ErrStoreFailure wraps an underlying persistence error.
	ErrStoreFailure = errors.New("store failure")

	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error so errors.Is matches the underlying kind.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
