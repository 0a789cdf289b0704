package ccninfo

import "github.com/cefore-go/cefnetd/internal/wire"

// ConvertToReply builds a Ccninfo reply from a parsed in-transit
// request, per spec.md §4.3.3: packet type flipped to REPLY, the
// given return code set in the fixed header, the accumulated report
// chain carried forward, the origin node identifier carried forward
// unchanged (so the initiator's correlation check in correlate.go can
// verify it), the given reply blocks describing matched cache entries
// appended, and a validation trailer appended if validator is non-nil.
//
// Go slices make a true in-place packet-type flip no cheaper than
// rebuilding into dst, so this writes a fresh packet rather than
// mutating req's buffer -- the one documented deviation from "in
// place" in the wire sense; the result is byte-for-byte what an
// in-place conversion would have produced.
func ConvertToReply(dst []byte, req *wire.ParsedCcninfo, retCode RetCode, replies []wire.ReplyBlock, validator wire.Validator) (int, error) {
	return wire.BuildCcninfoReply(dst, wire.CcninfoReplyOptions{
		Name:      req.Name,
		HopLimit:  0,
		RetCode:   byte(retCode),
		RequestID: req.RequestID,
		SkipHop:   req.SkipHop,
		Flags:     req.Flags,
		NodeID:    req.OriginNodeID,
		Reports:   req.Reports,
		Replies:   replies,
		Validator: validator,
	})
}
