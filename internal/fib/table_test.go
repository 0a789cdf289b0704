package fib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/wire"
)

func keyOf(t *testing.T, uri string) []byte {
	t.Helper()
	n, err := wire.URIToName(uri)
	require.NoError(t, err)
	return n.Bytes()
}

func TestLongestPrefixMatch(t *testing.T) {
	tbl := NewTable()
	parent := keyOf(t, "ccnx:/a/b")
	child := keyOf(t, "ccnx:/a/b/c")

	entryParent := tbl.LookupOrCreate(parent)
	tbl.AddFace(entryParent, 1, OriginStatic)
	entryChild := tbl.LookupOrCreate(child)
	tbl.AddFace(entryChild, 2, OriginStatic)

	// Exact match wins over the shorter prefix.
	got, ok := tbl.Lookup(child)
	require.True(t, ok)
	assert.Equal(t, entryChild.ID(), got.ID())

	// A longer query with no exact entry shortens to the nearest
	// segment boundary that does have one.
	longer := keyOf(t, "ccnx:/a/b/c/d")
	got, ok = tbl.Lookup(longer)
	require.True(t, ok)
	assert.Equal(t, entryChild.ID(), got.ID())

	// A query under "a" with no entry at all falls back to "a/b".
	sibling := keyOf(t, "ccnx:/a/b/x")
	got, ok = tbl.Lookup(sibling)
	require.True(t, ok)
	assert.Equal(t, entryParent.ID(), got.ID())
}

func TestLongestPrefixMatch_NoMatchFallsBackToDefault(t *testing.T) {
	tbl := NewTable()
	def := tbl.LookupOrCreate(nil)
	tbl.AddFace(def, 9, OriginStatic)

	key := keyOf(t, "ccnx:/unrelated")
	got, ok := tbl.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, def.ID(), got.ID())
}

func TestLongestPrefixMatch_NoMatchNoDefault(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup(keyOf(t, "ccnx:/nothing/here"))
	assert.False(t, ok)
}

func TestEmptyEntryGC(t *testing.T) {
	tbl := NewTable()
	key := keyOf(t, "ccnx:/a/b")

	entry := tbl.LookupOrCreate(key)
	tbl.AddFace(entry, 1, OriginStatic)
	assert.Equal(t, 1, tbl.Len())

	tbl.RemoveFace(entry, 1, OriginStatic)
	assert.Equal(t, 0, tbl.Len(), "entry with no remaining faces must be reaped")

	_, ok := tbl.Get(key)
	assert.False(t, ok)
}

func TestEmptyEntryGC_DefaultEntry(t *testing.T) {
	tbl := NewTable()
	def := tbl.LookupOrCreate(nil)
	tbl.AddFace(def, 1, OriginStatic)
	assert.True(t, tbl.HasDefault())

	tbl.RemoveFace(def, 1, OriginStatic)
	assert.False(t, tbl.HasDefault(), "default entry must be cleared once its last face is removed")
}

func TestCleanupClosedFaces(t *testing.T) {
	tbl := NewTable()
	key := keyOf(t, "ccnx:/a/b")
	entry := tbl.LookupOrCreate(key)
	tbl.AddFace(entry, 1, OriginStatic)
	tbl.AddFace(entry, 2, OriginStatic)

	tbl.CleanupClosedFaces(func(faceID uint16) bool { return faceID == 1 })

	got, ok := tbl.Get(key)
	require.True(t, ok)
	faces := got.Faces()
	require.Len(t, faces, 1)
	assert.Equal(t, uint16(2), faces[0].FaceID)
}

func TestCleanupClosedFaces_ReapsEmptiedEntry(t *testing.T) {
	tbl := NewTable()
	key := keyOf(t, "ccnx:/a/b")
	entry := tbl.LookupOrCreate(key)
	tbl.AddFace(entry, 1, OriginStatic)

	tbl.CleanupClosedFaces(func(faceID uint16) bool { return true })

	assert.Equal(t, 0, tbl.Len())
}
