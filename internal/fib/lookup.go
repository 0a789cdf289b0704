package fib

import "github.com/cefore-go/cefnetd/internal/wire"

// Lookup performs longest-prefix match for name (the wire-form bytes of
// a Name, e.g. wire.Name.Bytes()), per spec.md §4.2.2: exact match
// first; on miss, shorten to the previous segment boundary by
// re-walking the TLV structure and retry; fall back to the default
// entry if no prefix matches. Exact match always wins over any prefix,
// and a longer prefix always wins over a shorter one, because the walk
// only ever shortens.
func (t *Table) Lookup(name []byte) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookupLocked(name)
}

func (t *Table) lookupLocked(name []byte) (*Entry, bool) {
	key := name
	for {
		if len(key) == 0 {
			if t.default_ != nil {
				return t.default_, true
			}
			return nil, false
		}
		if e, ok := t.entries[string(key)]; ok {
			return e, true
		}
		shortened, ok := shortenToPrecedingBoundary(key)
		if !ok {
			if t.default_ != nil {
				return t.default_, true
			}
			return nil, false
		}
		key = shortened
	}
}

// shortenToPrecedingBoundary re-walks name from the start and returns
// the prefix ending at the segment boundary immediately before len(name)
// -- i.e. name with its last segment dropped. A one-segment name
// shortens to the empty name (ok=true), which the caller handles via the
// len(key)==0 branch above. Returns ok=false only if name is empty or
// its segments do not parse.
func shortenToPrecedingBoundary(name []byte) ([]byte, bool) {
	bounds, err := wire.SegmentBoundaries(name)
	if err != nil || len(bounds) == 0 {
		return nil, false
	}
	if len(bounds) == 1 {
		return name[:0], true
	}
	return name[:bounds[len(bounds)-2]], true
}
