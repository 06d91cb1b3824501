package store

import (
	"context"
	"io"
	"time"
)

// Optional store capability interfaces.
//
// These are used for feature detection (type assertions). The core
// Store interface remains intentionally small.

// ObjectGetter can download objects.
type ObjectGetter interface {
	// GetObject returns the object's metadata, including its content
	// ETag, and a reader over its bytes. The caller must close the body.
	GetObject(ctx context.Context, key string) (*ObjectInfo, io.ReadCloser, error)
}

// PutOptions configures an object write.
type PutOptions struct {
	// LastModified forces the stored object's modification time.
	// Zero means "now".
	LastModified time.Time
}

// ObjectPutter can create/overwrite objects.
type ObjectPutter interface {
	// PutObject writes body to key, creating missing parent directories
	// on demand, and returns the resulting metadata including the
	// computed content ETag.
	PutObject(ctx context.Context, key string, body io.Reader, opts PutOptions) (*ObjectInfo, error)
}

// ObjectDeleter can delete single objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// TreeDeleter can recursively remove a directory subtree.
type TreeDeleter interface {
	DeleteTree(ctx context.Context, dirKey string) error
}
