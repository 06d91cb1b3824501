// Package store defines abstractions for hierarchical key-value storage
// backends.
//
// A Store maps a /-delimited key space onto a storage medium and exposes
// listing and metadata retrieval. Listing comes in two modes: shallow
// (the immediate children of one directory key) and deep (a
// cursor-resumable traversal of an entire subtree). In deep mode the
// returned Cursor is the complete traversal state - no state is held by
// the store between calls.
package store

import (
	"context"
	"time"
)

// Store abstracts listing and metadata operations over a key space.
//
// Implementations should:
//   - Treat keys as opaque /-delimited strings sorted lexicographically
//   - Be safe for concurrent use
//   - Hold no per-traversal state: the cursor string carries all of it
type Store interface {
	// List returns one page of entries for the given key.
	//
	// Shallow mode (Deep=false) lists the immediate children of
	// opts.Key, classified into Objects and Dirs. Deep mode performs one
	// step of the subtree traversal and returns the cursor for the next
	// step; an empty Cursor in the result signals completion.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Stat returns metadata for a single object.
	// Returns ErrNotFound if the key does not exist and ErrNotAFile if
	// it resolves to something other than a regular object.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Key is the directory key to list.
	Key string

	// Cursor resumes a deep listing from a previous ListResult.
	// Empty string starts a fresh traversal. Ignored in shallow mode.
	Cursor string

	// Deep selects cursor-resumable subtree traversal instead of a
	// single-directory listing.
	Deep bool

	// MaxKeys limits the page size where the backend supports it.
	// The filesystem backend returns one directory's worth of entries
	// per call regardless of this value.
	MaxKeys int
}

// ListResult contains one page of entries from a List operation.
type ListResult struct {
	// Objects are the object entries for this page, sorted ascending by
	// key with no duplicates.
	Objects []ObjectInfo

	// Dirs are the full keys of the immediate child directories, sorted
	// ascending. Only populated in shallow mode; deep listings keep
	// directories internal to the traversal.
	Dirs []string

	// Cursor resumes the traversal in deep mode. Empty means the
	// traversal is complete. Always empty in shallow mode.
	Cursor string
}

// ObjectInfo contains metadata for a single object.
type ObjectInfo struct {
	// Key is the full object key.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the content-derived integrity tag. Listing entries of the
	// filesystem backend leave it empty; Get/Put populate it.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// BackendType identifies a storage backend.
type BackendType string

const (
	// BackendFS is the local-filesystem backend.
	BackendFS BackendType = "fs"

	// BackendS3 is AWS S3 or S3-compatible storage.
	BackendS3 BackendType = "s3"
)

// String returns the string representation of the backend type.
func (b BackendType) String() string {
	return string(b)
}
