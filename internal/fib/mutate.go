package fib

import "github.com/rs/xid"

// LookupOrCreate returns the entry for the exact key, creating an empty
// one if absent. An empty-key (zero-length) lookup creates or returns
// the default entry instead of indexing the map, per spec.md §4.2.1's
// separately tracked default reference.
func (t *Table) LookupOrCreate(key []byte) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(key) == 0 {
		if t.default_ == nil {
			t.default_ = &Entry{id: xid.New(), key: nil}
		}
		return t.default_
	}

	if e, ok := t.entries[string(key)]; ok {
		return e
	}
	e := &Entry{id: xid.New(), key: append([]byte(nil), key...)}
	t.entries[string(key)] = e
	return e
}

// AddFace attaches faceID to entry under origin, returning whether the
// face set changed (either a new face or a newly set origin bit).
func (t *Table) AddFace(entry *Entry, faceID uint16, origin FaceOrigin) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return entry.addFace(faceID, origin)
}

// RemoveFace clears origin's bits from faceID on entry. If the entry's
// face set becomes empty, the entry is removed from the index (or, if
// it was the default entry, the default reference is cleared), per
// spec.md §4.2.3 and testable property 4.
func (t *Table) RemoveFace(entry *Entry, faceID uint16, origin FaceOrigin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry.removeFace(faceID, origin)
	t.reapIfEmptyLocked(entry)
}

// CleanupClosedFaces walks every entry, dropping face records whose
// face_id is reported closed by isClosed, and removes any entry that
// becomes empty as a result, per spec.md §4.2.3.
func (t *Table) CleanupClosedFaces(isClosed func(faceID uint16) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reap := func(e *Entry) {
		kept := e.faces[:0]
		for _, f := range e.faces {
			if !isClosed(f.FaceID) {
				kept = append(kept, f)
			}
		}
		e.faces = kept
	}

	if t.default_ != nil {
		reap(t.default_)
		if t.default_.empty() {
			t.default_ = nil
		}
	}
	for key, e := range t.entries {
		reap(e)
		if e.empty() {
			delete(t.entries, key)
		}
	}
}

// reapIfEmptyLocked removes entry from the index (or clears the default
// reference) if its face set is empty. Caller must hold t.mu.
func (t *Table) reapIfEmptyLocked(entry *Entry) {
	if !entry.empty() {
		return
	}
	if t.default_ == entry {
		t.default_ = nil
		return
	}
	delete(t.entries, string(entry.key))
}
