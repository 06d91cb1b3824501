package cmd

import (
	"errors"
	"fmt"
)

// codedError carries a process exit code alongside the error chain so
// Execute can map failures to meaningful shell statuses.
type codedError struct {
	code    int
	message string
	err     error
}

func (e *codedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s (exit code %d): %v", e.message, e.code, e.err)
	}
	return fmt.Sprintf("%s (exit code %d)", e.message, e.code)
}

func (e *codedError) Unwrap() error { return e.err }

// exitError wraps err with a message and exit code.
func exitError(code int, message string, err error) error {
	return &codedError{code: code, message: message, err: err}
}

// exitCode extracts the exit code from an error chain, defaulting to 1.
func exitCode(err error) int {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 1
}
