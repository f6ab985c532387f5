// Package core provides the main Memento client and memory management functionality.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrValidation indicates a missing or empty required argument.
	ErrValidation = errors.New("invalid argument")

	// ErrPersistence indicates a storage read/write failure during a
	// mutating operation. The prior on-disk snapshot is untouched because
	// backends only commit fully written data.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MemoryError wraps errors with operation context.
//
// It records which operation failed, making error messages more informative
// for debugging.
//
// Example:
//
//	err := &MemoryError{
//	    Op:  "Store",
//	    Err: ErrValidation,
//	}
//	// Error() returns: "memento: Store: invalid argument"
type MemoryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message in the form "memento: <Op>: <Err>".
func (e *MemoryError) Error() string {
	return fmt.Sprintf("memento: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As work
// through a MemoryError.
func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError creates a new MemoryError wrapping the given error.
//
// If err is nil, returns nil, which allows safe unconditional wrapping:
//
//	return NewMemoryError("Store", err)
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{
		Op:  op,
		Err: err,
	}
}
