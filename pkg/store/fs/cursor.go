package fs

import (
	"fmt"
	"strings"

	"github.com/arborlabs/keytree/pkg/store"
)

// Cursor wire format: a single direction byte ('+' forward, '-'
// backward), then anchor, a literal ':', then target. The format is a
// compatibility contract: cursors must survive process restarts and
// round-trip through callers unchanged.

type direction byte

const (
	// dirForward descends into a freshly discovered subdirectory.
	dirForward direction = '+'

	// dirBackward resumes scanning a parent directory for siblings
	// after the one just finished.
	dirBackward direction = '-'
)

// cursor is the complete state of an in-progress deep listing.
type cursor struct {
	dir direction

	// anchor is the directory most recently processed. On a backward
	// step its base name becomes the lower bound that filters out
	// already-visited siblings.
	anchor string

	// target is the directory to query next.
	target string
}

// encode serializes the cursor to its opaque wire form.
func (c cursor) encode() string {
	return string(c.dir) + c.anchor + ":" + c.target
}

// decodeCursor parses a cursor string. A string without a recognized
// direction byte or without a separator fails with ErrMalformedCursor,
// as does an anchor/target pair the walk could never have produced: a
// forward target is always an immediate child of its anchor, and a
// backward target is always the anchor's parent.
func decodeCursor(raw string) (cursor, error) {
	if raw == "" {
		return cursor{}, fmt.Errorf("%w: empty string", store.ErrMalformedCursor)
	}
	d := direction(raw[0])
	if d != dirForward && d != dirBackward {
		return cursor{}, fmt.Errorf("%w: missing direction marker in %q", store.ErrMalformedCursor, raw)
	}
	rest := raw[1:]
	sep := strings.Index(rest, ":")
	if sep < 0 {
		return cursor{}, fmt.Errorf("%w: missing separator in %q", store.ErrMalformedCursor, raw)
	}
	c := cursor{dir: d, anchor: rest[:sep], target: rest[sep+1:]}

	switch c.dir {
	case dirForward:
		if c.target == "" || parentKey(c.target) != c.anchor {
			return cursor{}, fmt.Errorf("%w: target %q is not a child of anchor %q",
				store.ErrMalformedCursor, c.target, c.anchor)
		}
	case dirBackward:
		if c.anchor == "" || parentKey(c.anchor) != c.target {
			return cursor{}, fmt.Errorf("%w: target %q is not the parent of anchor %q",
				store.ErrMalformedCursor, c.target, c.anchor)
		}
	}
	return c, nil
}

// keyWithin reports whether key lies inside the subtree rooted at
// start. The root key contains everything.
func keyWithin(start, key string) bool {
	if start == "" {
		return true
	}
	return key == start || strings.HasPrefix(key, start+"/")
}
