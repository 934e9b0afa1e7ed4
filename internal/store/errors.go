package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when no document matches a filter.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert would reuse an existing ID.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when a document cannot be encoded or
	// violates a storage constraint. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidFilter is returned when a filter or update cannot be encoded.
	ErrInvalidFilter = errors.New("invalid filter")
)

// IsNotFoundError checks if the error is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is, or wraps, ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Collection string // The collection name (e.g., "tasks")
	Operation  string // The operation that failed (e.g., "insert", "find")
	Message    string // Error message
	Err        error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Collection,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Collection, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError for collection and operation.
func NewStoreError(collection, operation, message string, err error) *StoreError {
	return &StoreError{
		Collection: collection,
		Operation:  operation,
		Message:    message,
		Err:        err,
	}
}
