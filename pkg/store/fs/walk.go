package fs

import (
	"fmt"

	"github.com/arborlabs/keytree/pkg/store"
)

// step performs one unit of the deep listing: a single directory
// listing plus the decision about where the walk goes next.
//
// The traversal is a stack-free depth-first, leftmost-first walk,
// re-derived at every call purely from the supplied cursor:
//
//   - No cursor: list startKey in full. Descend into its first
//     subdirectory, or finish if it has none.
//   - Forward cursor: the target is a never-before-visited directory.
//     List it in full, then descend into its first subdirectory or, if
//     it has none, backtrack to its parent.
//   - Backward cursor: the target is a parent whose files were already
//     emitted before the prior descent. List it with the anchor's base
//     name as lower bound and objects suppressed, so only directories
//     after the one just completed surface. Descend into the first
//     remaining sibling, backtrack another level, or - once the target
//     is the starting key itself - finish.
//
// Each backtrack re-lists a parent directory, but already-visited
// entries are dropped by the name bound before any metadata fetch, so
// the amortized cost is proportional to the directory count, not depth
// squared.
//
// No state persists between calls; resuming with the same cursor
// against an unchanged tree repeats the same page and next cursor.
func (s *Store) step(startKey, rawCursor string) ([]store.ObjectInfo, string, error) {
	if rawCursor == "" {
		page, err := s.listDir(startKey, listFilter{})
		if err != nil {
			return nil, "", s.wrapError("List", startKey, err)
		}
		if len(page.dirs) == 0 {
			return page.objects, "", nil
		}
		next := cursor{dir: dirForward, anchor: startKey, target: page.dirs[0]}
		return page.objects, next.encode(), nil
	}

	cur, err := decodeCursor(rawCursor)
	if err != nil {
		return nil, "", s.wrapError("List", startKey, err)
	}
	if !keyWithin(startKey, cur.target) {
		// A target outside the starting key can never reach the
		// termination condition; reject it rather than walk forever.
		return nil, "", s.wrapError("List", startKey,
			fmt.Errorf("%w: target %q is outside the listing root %q",
				store.ErrMalformedCursor, cur.target, startKey))
	}

	switch cur.dir {
	case dirForward:
		page, err := s.listDir(cur.target, listFilter{})
		if err != nil {
			return nil, "", s.wrapError("List", cur.target, err)
		}
		var next cursor
		if len(page.dirs) > 0 {
			next = cursor{dir: dirForward, anchor: cur.target, target: page.dirs[0]}
		} else {
			next = cursor{dir: dirBackward, anchor: cur.target, target: parentKey(cur.target)}
		}
		return page.objects, next.encode(), nil

	case dirBackward:
		page, err := s.listDir(cur.target, listFilter{
			lowerBound:  baseName(cur.anchor),
			skipObjects: true,
		})
		if err != nil {
			return nil, "", s.wrapError("List", cur.target, err)
		}
		if len(page.dirs) > 0 {
			next := cursor{dir: dirForward, anchor: cur.target, target: page.dirs[0]}
			return nil, next.encode(), nil
		}
		if cur.target == startKey {
			// Backtracked to the starting key with no siblings left.
			return nil, "", nil
		}
		next := cursor{dir: dirBackward, anchor: cur.target, target: parentKey(cur.target)}
		return nil, next.encode(), nil
	}

	// Unreachable: decodeCursor validates the direction byte.
	return nil, "", s.wrapError("List", startKey, store.ErrMalformedCursor)
}
