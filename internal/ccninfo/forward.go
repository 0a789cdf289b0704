package ccninfo

import (
	"time"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// ForwardDecision is the outcome of processing an in-transit discovery
// request at one hop, per spec.md §4.3.2/§4.3.3: either the stamped
// request goes out a set of faces, or the request is terminated and a
// reply goes back the way it came.
type ForwardDecision struct {
	Forward bool
	FaceIDs []uint16
	Reply   []byte
}

// RouteLookup is the FIB collaborator a forwarder plugs in: given the
// discovery name, return the face set a forwarded request would go out,
// or ok=false if nothing matches (not even the default entry).
type RouteLookup func(name wire.Name) (faceIDs []uint16, ok bool)

// ProcessRequest decides whether the in-transit discovery request buf
// (already parsed into req) should be stamped with nodeID and forwarded,
// or terminated with a reply, per spec.md §4.3.2/§4.3.3: hop-limit
// exhaustion, no matching route, and stamp overflow all terminate with a
// reply (NoInfo, NoRoute, NoSpace respectively); otherwise the request
// is stamped and handed back for forwarding out the looked-up faces.
// Exhaustion is judged against req.HopLimit, the fixed-header value the
// initiator set (the -r flag), not any per-forwarder configuration --
// every hop on the path must honor the same budget the initiator chose.
func ProcessRequest(buf []byte, req *wire.ParsedCcninfo, nodeID []byte, lookup RouteLookup, validator wire.Validator) (ForwardDecision, []byte, error) {
	if len(req.Reports)+1 >= int(req.HopLimit) {
		reply, err := terminate(req, NoInfo, validator)
		return ForwardDecision{Reply: reply}, buf, err
	}

	faceIDs, ok := lookup(req.Name)
	if !ok {
		reply, err := terminate(req, NoRoute, validator)
		return ForwardDecision{Reply: reply}, buf, err
	}

	stamped, err := Stamp(buf, nodeID, time.Now())
	if err != nil {
		if err == ErrStampOverflow {
			reply, rerr := terminate(req, NoSpace, validator)
			return ForwardDecision{Reply: reply}, buf, rerr
		}
		return ForwardDecision{}, buf, err
	}

	return ForwardDecision{Forward: true, FaceIDs: faceIDs}, stamped, nil
}

func terminate(req *wire.ParsedCcninfo, code RetCode, validator wire.Validator) ([]byte, error) {
	dst := make([]byte, wire.MaxMsgSize)
	n, err := ConvertToReply(dst, req, code, nil, validator)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
