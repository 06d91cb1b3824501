// Package output provides JSONL output for listing results.
//
// Output is structured as typed record envelopes containing objects,
// errors, page boundaries, and summaries. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: keytree.<type>.v<version>
const (
	// TypeObject identifies object listing records.
	TypeObject = "keytree.object.v1"

	// TypeError identifies error records.
	TypeError = "keytree.error.v1"

	// TypePage identifies page boundary records carrying the
	// resumption cursor.
	TypePage = "keytree.page.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "keytree.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field. The type field determines how to
// interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "keytree.object.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// RunID is the correlation ID for this invocation.
	RunID string `json:"run_id"`

	// Backend identifies the storage backend (e.g., "fs", "s3").
	Backend string `json:"backend"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// ObjectRecord is the data payload for object listings.
type ObjectRecord struct {
	// Key is the full object key.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`

	// ETag is the entity tag, an MD5 hash of the object content.
	ETag string `json:"etag"`

	// LastModified is when the object was last modified.
	LastModified time.Time `json:"last_modified"`
}

// PageRecord is the data payload for page boundaries.
//
// A page record is emitted after each listing step in a deep traversal
// with the cursor needed to resume from that point. An empty cursor
// means the traversal is complete.
type PageRecord struct {
	// Key is the starting key of the traversal.
	Key string `json:"key"`

	// Cursor resumes the traversal after this page.
	Cursor string `json:"cursor"`

	// Objects is the number of object records in this page.
	Objects int `json:"objects"`
}

// ErrorRecord is the data payload for errors.
//
// Errors are emitted as records rather than failing the entire run,
// allowing partial results when some operations fail.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Key is the object key related to this error, if applicable.
	Key string `json:"key,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeAccessDenied indicates permission failure.
	ErrCodeAccessDenied = "ACCESS_DENIED"

	// ErrCodeNotFound indicates the key was not found.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeMalformedCursor indicates an undecodable cursor.
	ErrCodeMalformedCursor = "MALFORMED_CURSOR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// SummaryRecord is the data payload for final summaries.
type SummaryRecord struct {
	// Objects is the total number of object records emitted.
	Objects int64 `json:"objects"`

	// BytesTotal is the cumulative size of listed objects in bytes.
	BytesTotal int64 `json:"bytes_total"`

	// Pages is the number of listing steps performed.
	Pages int64 `json:"pages"`

	// Duration is the total run duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`

	// Errors is the count of errors encountered.
	Errors int64 `json:"errors"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
