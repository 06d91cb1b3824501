package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer emits listing records as JSONL. Each Write* call produces
// exactly one line of JSON; implementations must keep lines whole
// under concurrent use.
type Writer interface {
	// WriteObject emits an object record.
	WriteObject(ctx context.Context, obj *ObjectRecord) error

	// WriteError emits an error record.
	WriteError(ctx context.Context, err *ErrorRecord) error

	// WritePage emits a page boundary record.
	WritePage(ctx context.Context, page *PageRecord) error

	// WriteSummary emits a summary record.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes envelope records to an io.Writer, one per line.
// A mutex serializes line emission so concurrent listing workers
// cannot interleave partial lines. The run ID and backend tag are
// stamped onto every envelope.
type JSONLWriter struct {
	w       io.Writer
	runID   string
	backend string

	mu     sync.Mutex
	closed bool
}

// NewJSONLWriter wraps w (typically stdout or a log file) in a JSONL
// record writer. runID correlates all records of one invocation;
// backend names the store the records came from ("fs", "s3").
func NewJSONLWriter(w io.Writer, runID, backend string) *JSONLWriter {
	return &JSONLWriter{w: w, runID: runID, backend: backend}
}

// WriteObject emits an object record.
func (j *JSONLWriter) WriteObject(ctx context.Context, obj *ObjectRecord) error {
	return j.writeRecord(ctx, TypeObject, obj)
}

// WriteError emits an error record.
func (j *JSONLWriter) WriteError(ctx context.Context, err *ErrorRecord) error {
	return j.writeRecord(ctx, TypeError, err)
}

// WritePage emits a page boundary record carrying the resumption
// cursor for the traversal step just completed.
func (j *JSONLWriter) WritePage(ctx context.Context, page *PageRecord) error {
	return j.writeRecord(ctx, TypePage, page)
}

// WriteSummary emits a summary record.
func (j *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return j.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer closed; later writes fail with
// ErrWriterClosed. The underlying io.Writer stays open - its owner
// closes it.
func (j *JSONLWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

func (j *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// The payload marshal does not touch shared state, so it happens
	// before the lock; only envelope assembly and the write itself are
	// serialized.
	payload, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(Record{
		Type:    recordType,
		TS:      time.Now().UTC(),
		RunID:   j.runID,
		Backend: j.backend,
		Data:    payload,
	})
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	if err := writeAll(j.w, append(line, '\n')); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// writeAll loops until every byte of p reaches w. io.Writer permits
// n < len(p) with a nil error; accepting that here would truncate a
// JSONL line mid-record.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

var _ Writer = (*JSONLWriter)(nil)
