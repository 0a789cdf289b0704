package fib

import "sync"

// Table is the Forwarding Information Base: a hash table keyed by raw
// name-prefix bytes, plus a separately tracked default (empty-name)
// entry. Grounded on the teacher's registryImpl
// (internal/plugin/registry.go): the same sync.RWMutex-guarded
// map-of-pointers shape, repurposed from plugin names to name-prefix
// keys.
//
// Intended deployment is a single-threaded forwarder event loop owning
// both reads and writes; the RWMutex only matters if a caller chooses
// to drive lookups and mutations from different goroutines, per
// spec.md §5.
type Table struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	default_ *Entry
}

// NewTable returns an empty FIB.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Len returns the number of entries currently indexed, excluding the
// default entry (it is not stored in the map).
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// HasDefault reports whether a default (empty-name) entry is present.
func (t *Table) HasDefault() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.default_ != nil
}

// Get returns the entry exactly matching key (no longest-prefix
// shortening), or the default entry when key is empty.
func (t *Table) Get(key []byte) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(key) == 0 {
		if t.default_ != nil {
			return t.default_, true
		}
		return nil, false
	}
	e, ok := t.entries[string(key)]
	return e, ok
}
