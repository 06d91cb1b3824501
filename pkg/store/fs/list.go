package fs

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/arborlabs/keytree/pkg/store"
)

// listFilter constrains one directory listing.
type listFilter struct {
	// lowerBound skips entries whose bare name sorts at or below it.
	// Empty means no bound. This is what keeps a resumed traversal from
	// returning an entry twice, so it must be applied before any
	// metadata is fetched for the entry.
	lowerBound string

	// skipObjects drops file entries entirely. Directories are still
	// classified and returned; a backtracking traversal needs to
	// rediscover sibling subdirectories.
	skipObjects bool
}

// listPage is the result of listing one directory.
type listPage struct {
	objects []store.ObjectInfo
	dirs    []string
}

// listDir lists the immediate children of dirKey.
//
// Returned errors are store sentinels where the condition maps to one
// (ErrNotFound, ErrNotADirectory) and raw filesystem errors otherwise;
// the caller wraps them with operation context.
func (s *Store) listDir(dirKey string, filter listFilter) (*listPage, error) {
	full, err := s.fullPath(dirKey)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		if st, serr := os.Stat(full); serr == nil && !st.IsDir() {
			return nil, store.ErrNotADirectory
		}
		return nil, err
	}

	page := &listPage{}
	for _, e := range entries {
		name := e.Name()
		if filter.lowerBound != "" && name <= filter.lowerBound {
			continue
		}
		key := joinKey(dirKey, name)
		if e.IsDir() {
			page.dirs = append(page.dirs, key)
			continue
		}
		if filter.skipObjects {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				// Entry vanished between readdir and stat.
				continue
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		page.objects = append(page.objects, store.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	sort.Strings(page.dirs)
	sort.Slice(page.objects, func(i, j int) bool {
		return page.objects[i].Key < page.objects[j].Key
	})
	return page, nil
}

// cleanKey normalizes a key to its canonical /-delimited form.
func cleanKey(key string) string {
	key = strings.TrimSpace(key)
	return strings.Trim(key, "/")
}

// joinKey appends a child name to a directory key.
func joinKey(dirKey, name string) string {
	if dirKey == "" {
		return name
	}
	return dirKey + "/" + name
}

// parentKey returns the directory key one level above key, or "" at
// the top of the key space.
func parentKey(key string) string {
	parent := path.Dir(key)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}

// baseName returns the last segment of a key.
func baseName(key string) string {
	if key == "" {
		return ""
	}
	return path.Base(key)
}
