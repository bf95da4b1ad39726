package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before being
	// stored, or violates a foreign key, check or not-null constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrEntryNotFound indicates that the requested active entry does not exist.
	ErrEntryNotFound = fmt.Errorf("%w: entry", ErrNotFound)

	// ErrMasteredNotFound indicates that the requested mastered entry does not exist.
	ErrMasteredNotFound = fmt.Errorf("%w: mastered entry", ErrNotFound)

	// ErrMetadataNotFound indicates that the requested metadata key is not set.
	ErrMetadataNotFound = fmt.Errorf("%w: metadata", ErrNotFound)

	// ErrEntryExists indicates an active entry with the same language and key.
	ErrEntryExists = fmt.Errorf("%w: entry", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds entity and operation context to a persistence failure.
type StoreError struct {
	Entity    string // The entity type (e.g., "entry", "encounter")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
