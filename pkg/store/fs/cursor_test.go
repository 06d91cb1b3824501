package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborlabs/keytree/pkg/store"
)

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cur  cursor
		wire string
	}{
		{
			name: "forward",
			cur:  cursor{dir: dirForward, anchor: "a", target: "a/b"},
			wire: "+a:a/b",
		},
		{
			name: "backward",
			cur:  cursor{dir: dirBackward, anchor: "a/b/c", target: "a/b"},
			wire: "-a/b/c:a/b",
		},
		{
			name: "empty anchor at store root",
			cur:  cursor{dir: dirForward, anchor: "", target: "b"},
			wire: "+:b",
		},
		{
			name: "backward to store root",
			cur:  cursor{dir: dirBackward, anchor: "b", target: ""},
			wire: "-b:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wire, tt.cur.encode())

			decoded, err := decodeCursor(tt.wire)
			require.NoError(t, err)
			assert.Equal(t, tt.cur, decoded)
		})
	}
}

func TestDecodeCursor_SplitsOnFirstSeparator(t *testing.T) {
	// Key segments may contain ':'; the split happens at the first
	// separator after the direction byte and the rest survives intact.
	decoded, err := decodeCursor("+a:a/b:c")
	require.NoError(t, err)
	assert.Equal(t, "a", decoded.anchor)
	assert.Equal(t, "a/b:c", decoded.target)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no direction marker", "a:b"},
		{"unknown direction marker", "?a:b"},
		{"no separator", "+ab"},
		{"bare direction marker", "+"},
		{"forward target not a child of anchor", "+a:b/c"},
		{"forward target equals anchor", "+a:a"},
		{"forward target above anchor", "+a/b:a"},
		{"forward empty target", "+:"},
		{"backward target not the parent of anchor", "-a/b:c"},
		{"backward empty anchor", "-:a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCursor(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrMalformedCursor)
		})
	}
}

func TestKeyWithin(t *testing.T) {
	tests := []struct {
		start string
		key   string
		want  bool
	}{
		{"", "anything/at/all", true},
		{"a", "a", true},
		{"a", "a/b/c", true},
		{"a", "ab", false},
		{"a/b", "a", false},
		{"a", "z/x", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, keyWithin(tt.start, tt.key),
			"keyWithin(%q, %q)", tt.start, tt.key)
	}
}
