package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrNotAFile indicates the key exists but is not a regular object.
	ErrNotAFile = errors.New("key is not a file")

	// ErrNotADirectory indicates a listing target resolves to a file.
	ErrNotADirectory = errors.New("key is not a directory")

	// ErrAlreadyExists indicates a creation race on an existing entry.
	ErrAlreadyExists = errors.New("key already exists")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrMalformedCursor indicates a cursor string that cannot be decoded.
	// This is a caller programming error, not a transient condition.
	ErrMalformedCursor = errors.New("malformed cursor")
)

// StoreError wraps backend-specific errors with context.
type StoreError struct {
	// Op is the operation that failed (e.g., "List", "Stat").
	Op string

	// Backend is the backend type (e.g., "fs").
	Backend BackendType

	// Key is the object or directory key, if applicable.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotAFile returns true if the error indicates a non-file target.
func IsNotAFile(err error) bool {
	return errors.Is(err, ErrNotAFile)
}

// IsNotADirectory returns true if the error indicates a non-directory target.
func IsNotADirectory(err error) bool {
	return errors.Is(err, ErrNotADirectory)
}

// IsAccessDenied returns true if the error indicates insufficient permissions.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsMalformedCursor returns true if the error indicates an undecodable cursor.
func IsMalformedCursor(err error) bool {
	return errors.Is(err, ErrMalformedCursor)
}
