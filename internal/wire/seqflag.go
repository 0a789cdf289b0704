package wire

import "sync/atomic"

// SeqNumMode is the tri-state sequence-number emission mode described in
// spec.md §5 and §9 (design note on open question (a)): never emit, emit,
// or emit-but-the-caller-has-released-the-slot. It is modeled as a small
// value carried on a Codec, not a package-level singleton, per the design
// note -- construction-time configuration, not global mutable state.
type SeqNumMode int32

const (
	SeqNumDisabled SeqNumMode = iota // CefC_OptSeqnum_NotUse: never emit
	SeqNumEnabled                    // CefC_OptSeqnum_Use: emit
	SeqNumDrained                    // CefC_OptSeqnum_UnUse: emit, but caller released the slot
)

// Codec bundles the stateless encode/decode functions with the one piece
// of process-wide configuration the spec names: the sequence-number
// emission mode. It has no other state and is safe for concurrent use --
// the mode itself is the only thing that can be mutated after
// construction, and that's a relaxed atomic per spec.md §5 ("setters are
// called during startup/shutdown, not on the fast path").
type Codec struct {
	seqMode atomic.Int32
}

// NewCodec constructs a Codec with the given initial sequence-number mode.
func NewCodec(mode SeqNumMode) *Codec {
	c := &Codec{}
	c.seqMode.Store(int32(mode))
	return c
}

// SeqNumMode returns the current sequence-number emission mode.
func (c *Codec) SeqNumMode() SeqNumMode {
	return SeqNumMode(c.seqMode.Load())
}

// SetSeqNumMode updates the sequence-number emission mode. Not called on
// the packet-processing fast path.
func (c *Codec) SetSeqNumMode(mode SeqNumMode) {
	c.seqMode.Store(int32(mode))
}
