// Package fs implements the store interfaces for local filesystem paths.
//
// Keys are /-delimited paths relative to BaseDir. Directories on disk
// are the directory keys of the key space; regular files are its
// objects. Deep listing walks the subtree depth-first, one directory
// per call, carrying all traversal state in the returned cursor.
package fs

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arborlabs/keytree/pkg/store"
)

// Store implements store.Store for a directory tree rooted at BaseDir.
type Store struct {
	baseDir string
}

// Ensure Store implements the store capability interfaces.
var (
	_ store.Store         = (*Store)(nil)
	_ store.ObjectGetter  = (*Store)(nil)
	_ store.ObjectPutter  = (*Store)(nil)
	_ store.ObjectDeleter = (*Store)(nil)
	_ store.TreeDeleter   = (*Store)(nil)
)

// Config configures a filesystem store.
type Config struct {
	// BaseDir is the root of the key space (required).
	BaseDir string
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

// New creates a filesystem store rooted at cfg.BaseDir.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// Close releases resources held by the store. The filesystem store
// holds none; this satisfies store.Store.
func (s *Store) Close() error { return nil }

// Backend reports the backend type.
func (s *Store) Backend() store.BackendType { return store.BackendFS }

// List returns one page of entries for opts.Key.
//
// Shallow mode lists the immediate children of the directory key. Deep
// mode performs exactly one traversal step: one directory listing plus
// the decision about where the walk goes next, encoded in the returned
// cursor. Re-issuing the same cursor against an unchanged tree returns
// the same page and the same next cursor.
func (s *Store) List(ctx context.Context, opts store.ListOptions) (*store.ListResult, error) {
	_ = ctx
	key := cleanKey(opts.Key)

	if opts.Deep {
		objects, next, err := s.step(key, opts.Cursor)
		if err != nil {
			return nil, err
		}
		return &store.ListResult{Objects: objects, Cursor: next}, nil
	}

	page, err := s.listDir(key, listFilter{})
	if err != nil {
		return nil, s.wrapError("List", key, err)
	}
	return &store.ListResult{Objects: page.objects, Dirs: page.dirs}, nil
}

// Stat returns metadata for a single object.
func (s *Store) Stat(ctx context.Context, key string) (*store.ObjectInfo, error) {
	_ = ctx
	full, err := s.fullPath(key)
	if err != nil {
		return nil, s.wrapError("Stat", key, err)
	}
	st, err := os.Stat(full)
	if err != nil {
		return nil, s.wrapError("Stat", key, err)
	}
	if !st.Mode().IsRegular() {
		return nil, s.wrapError("Stat", key, store.ErrNotAFile)
	}
	return &store.ObjectInfo{
		Key:          cleanKey(key),
		Size:         st.Size(),
		LastModified: st.ModTime(),
	}, nil
}

// GetObject returns the object's metadata and its bytes.
//
// The ETag is the hex MD5 of the content, computed over the bytes that
// are returned, so a caller can verify integrity against a fresh hash.
func (s *Store) GetObject(ctx context.Context, key string) (*store.ObjectInfo, io.ReadCloser, error) {
	_ = ctx
	full, err := s.fullPath(key)
	if err != nil {
		return nil, nil, s.wrapError("GetObject", key, err)
	}
	st, err := os.Stat(full)
	if err != nil {
		return nil, nil, s.wrapError("GetObject", key, err)
	}
	if !st.Mode().IsRegular() {
		return nil, nil, s.wrapError("GetObject", key, store.ErrNotAFile)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, nil, s.wrapError("GetObject", key, err)
	}
	info := &store.ObjectInfo{
		Key:          cleanKey(key),
		Size:         int64(len(data)),
		ETag:         contentETag(data),
		LastModified: st.ModTime(),
	}
	return info, io.NopCloser(bytes.NewReader(data)), nil
}

// PutObject writes body to key and returns the resulting metadata.
//
// Missing parent directories are created on demand: the first write
// attempt that fails with a missing-parent error triggers one MkdirAll
// and exactly one retry. Any other failure, or failure of the retried
// write, propagates. If opts.LastModified is set, the stored object's
// modification time is forced to it (access time is set to now).
func (s *Store) PutObject(ctx context.Context, key string, body io.Reader, opts store.PutOptions) (*store.ObjectInfo, error) {
	_ = ctx
	full, err := s.fullPath(key)
	if err != nil {
		return nil, s.wrapError("PutObject", key, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, s.wrapError("PutObject", key, err)
	}

	if err := s.writeFile(full, data); err != nil {
		if !os.IsNotExist(err) {
			return nil, s.wrapError("PutObject", key, err)
		}
		// Missing parent directory: create the tree and retry once.
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, s.wrapError("PutObject", key, err)
		}
		if err := s.writeFile(full, data); err != nil {
			return nil, s.wrapError("PutObject", key, err)
		}
	}

	if !opts.LastModified.IsZero() {
		if err := os.Chtimes(full, time.Now(), opts.LastModified); err != nil {
			return nil, s.wrapError("PutObject", key, err)
		}
	}

	st, err := os.Stat(full)
	if err != nil {
		return nil, s.wrapError("PutObject", key, err)
	}
	return &store.ObjectInfo{
		Key:          cleanKey(key),
		Size:         st.Size(),
		ETag:         contentETag(data),
		LastModified: st.ModTime(),
	}, nil
}

// writeFile writes data to full atomically: temp file in the target
// directory, then rename. A missing parent surfaces as a not-exist
// error from CreateTemp.
func (s *Store) writeFile(full string, data []byte) error {
	dir := filepath.Dir(full)
	tmp, err := os.CreateTemp(dir, "keytree-put-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, full)
}

// DeleteObject removes one object.
func (s *Store) DeleteObject(ctx context.Context, key string) error {
	_ = ctx
	full, err := s.fullPath(key)
	if err != nil {
		return s.wrapError("DeleteObject", key, err)
	}
	if err := os.Remove(full); err != nil {
		return s.wrapError("DeleteObject", key, err)
	}
	return nil
}

// DeleteTree recursively removes a directory subtree.
func (s *Store) DeleteTree(ctx context.Context, dirKey string) error {
	_ = ctx
	full, err := s.fullPath(dirKey)
	if err != nil {
		return s.wrapError("DeleteTree", dirKey, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return s.wrapError("DeleteTree", dirKey, err)
	}
	return nil
}

// fullPath resolves a key to an absolute path under baseDir.
func (s *Store) fullPath(key string) (string, error) {
	key = cleanKey(key)
	// Prevent path traversal.
	clean := filepath.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

// wrapError wraps err in a StoreError, normalizing common filesystem
// errors to store sentinels.
func (s *Store) wrapError(op, key string, err error) error {
	wrapped := &store.StoreError{Op: op, Backend: store.BackendFS, Key: cleanKey(key), Err: err}
	switch {
	case err == nil:
		wrapped.Err = fmt.Errorf("unknown error")
	case os.IsNotExist(err):
		wrapped.Err = store.ErrNotFound
	case os.IsExist(err):
		wrapped.Err = store.ErrAlreadyExists
	case os.IsPermission(err):
		wrapped.Err = store.ErrAccessDenied
	}
	return wrapped
}

// contentETag computes the integrity tag over an object's raw bytes.
func contentETag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
