package fib

import "github.com/rs/xid"

// FaceOrigin is a bitwise-combinable tag for why a face is attached to
// an entry: configuration, the control-plane route protocol, or an
// application registering itself directly.
type FaceOrigin uint8

const (
	OriginStatic  FaceOrigin = 1 << iota // static configuration; LoadConfig does not set it (config lines carry OriginControl)
	OriginControl                        // populated by a route-add control message
	OriginApp                            // registered directly by an application face
)

// FaceRef is one outbound face attached to an entry, with the union of
// origins currently holding it present.
type FaceRef struct {
	FaceID   uint16
	TypeMask uint8
}

// Entry owns an immutable name-prefix key and a growable, insertion-
// ordered set of faces. The source implementation keeps faces as an
// intrusive singly-linked list; a slice gives the same set semantics
// and stable iteration order with none of the node bookkeeping, per
// spec.md §9 Design Note.
type Entry struct {
	id    xid.ID
	key   []byte
	faces []FaceRef
}

// ID returns the entry's stable handle, suitable for metrics export or
// any place an identity is needed independent of the key bytes.
func (e *Entry) ID() xid.ID { return e.id }

// Key returns the entry's name-prefix key (the wire form of a Name,
// without any enclosing T_NAME container).
func (e *Entry) Key() []byte { return e.key }

// Faces returns a snapshot of the entry's current face set.
func (e *Entry) Faces() []FaceRef {
	out := make([]FaceRef, len(e.faces))
	copy(out, e.faces)
	return out
}

func (e *Entry) empty() bool { return len(e.faces) == 0 }

// addFace appends faceID if absent, or ORs origin into its existing
// type_mask. Returns whether the mask changed.
func (e *Entry) addFace(faceID uint16, origin FaceOrigin) bool {
	for i := range e.faces {
		if e.faces[i].FaceID == faceID {
			before := e.faces[i].TypeMask
			e.faces[i].TypeMask |= uint8(origin)
			return e.faces[i].TypeMask != before
		}
	}
	e.faces = append(e.faces, FaceRef{FaceID: faceID, TypeMask: uint8(origin)})
	return true
}

// removeFace clears origin's bits from faceID's record, unlinking the
// record entirely once its mask reaches zero.
func (e *Entry) removeFace(faceID uint16, origin FaceOrigin) {
	for i := range e.faces {
		if e.faces[i].FaceID != faceID {
			continue
		}
		e.faces[i].TypeMask &^= uint8(origin)
		if e.faces[i].TypeMask == 0 {
			e.faces = append(e.faces[:i], e.faces[i+1:]...)
		}
		return
	}
}
