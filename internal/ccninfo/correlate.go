package ccninfo

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// outstanding is what PendingRequests remembers about a request it sent,
// enough to decide whether an incoming reply belongs to it.
type outstanding struct {
	requestID uint16
	hopLimit  byte
	nodeID    []byte
	sentAt    time.Time
}

// Result is what Accept returns for a matched reply: the parsed reply
// itself, the round-trip time, and the per-hop latency between
// consecutive report blocks.
type Result struct {
	Reply        *wire.ParsedCcninfo
	RTT          time.Duration
	HopLatencies []time.Duration
}

// PendingRequests tracks outstanding Ccninfo requests by a local
// correlation handle, and matches incoming replies against them.
// Grounded on the teacher's TraceManager
// (plugins/handler/skywalking/tracing/trace_manager.go): a table keyed
// by a correlation ID mapping to accumulating per-exchange state, reused
// here with ICN request/reply semantics instead of SIP dialogs. The
// table is a plain map with no locking, so a PendingRequests is not
// safe for concurrent use.
// google/uuid supplies the local handle -- a value with no wire
// representation of its own, used purely so a caller can hold a handle
// distinct from the wire request_id (which is only 16 bits and is
// explicitly allowed to collide across concurrent traces).
type PendingRequests struct {
	byHandle map[uuid.UUID]outstanding
}

// NewPendingRequests returns an empty correlation table.
func NewPendingRequests() *PendingRequests {
	return &PendingRequests{byHandle: make(map[uuid.UUID]outstanding)}
}

// Register records a just-sent request and returns its local handle.
func (p *PendingRequests) Register(req Request, sentAt time.Time) uuid.UUID {
	handle := uuid.New()
	p.byHandle[handle] = outstanding{
		requestID: req.RequestID,
		hopLimit:  req.HopLimit,
		nodeID:    append([]byte(nil), req.NodeID...),
		sentAt:    sentAt,
	}
	return handle
}

// Forget drops a handle once its collection window has closed.
func (p *PendingRequests) Forget(handle uuid.UUID) {
	delete(p.byHandle, handle)
}

// Accept implements the accept/drop predicate of spec.md §4.3.4: a
// reply is accepted iff packet type is REPLY, its report-block count is
// at most the original hop_limit, its request_id matches, and its
// node-identifier bytes match the original. Matching entries are not
// removed, since a single collection window may legitimately gather
// more than one reply to the same request (testable property 6 only
// requires mismatched request_id to be dropped, not single-reply
// exclusivity).
func (p *PendingRequests) Accept(reply *wire.ParsedCcninfo, receivedAt time.Time) (*Result, bool) {
	for _, o := range p.byHandle {
		if !matches(reply, o) {
			continue
		}
		return &Result{
			Reply:        reply,
			RTT:          receivedAt.Sub(o.sentAt),
			HopLatencies: hopLatencies(reply.Reports),
		}, true
	}
	return nil, false
}

func matches(reply *wire.ParsedCcninfo, o outstanding) bool {
	if reply.PacketType != wire.PTReply {
		return false
	}
	if len(reply.Reports) > int(o.hopLimit) {
		return false
	}
	if reply.RequestID != o.requestID {
		return false
	}
	return bytes.Equal(reply.OriginNodeID, o.nodeID)
}

// hopLatencies differences adjacent report-block NTP-32 timestamps,
// treating each as a monotonically increasing 32-bit counter (the NTP-32
// encoding wraps at roughly the same point arithmetic wraparound would,
// so unsigned subtraction is the correct delta even across that
// boundary).
func hopLatencies(reports []wire.ReportBlock) []time.Duration {
	if len(reports) < 2 {
		return nil
	}
	out := make([]time.Duration, 0, len(reports)-1)
	for i := 1; i < len(reports); i++ {
		delta := reports[i].ArrivalTime - reports[i-1].ArrivalTime
		out = append(out, ntp32DeltaToDuration(delta))
	}
	return out
}

// ntp32DeltaToDuration converts a difference of two NTP32 encodings
// (whole seconds in the high 16 bits, a 1/65536-second fraction in the
// low 16 bits) into a time.Duration.
func ntp32DeltaToDuration(delta uint32) time.Duration {
	sec := delta >> 16
	frac := delta & 0xFFFF
	return time.Duration(sec)*time.Second + time.Duration(frac)*time.Second/65536
}
