package wire

import (
	"encoding/binary"
	"sort"
)

// hopOpt is one pending hop-by-hop option TLV, collected and then
// emitted in ascending type order per spec.md §4.1.3.
type hopOpt struct {
	typ   uint16
	value []byte
}

func assembleHopByHop(opts []hopOpt) []byte {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].typ < opts[j].typ })
	var buf []byte
	for _, o := range opts {
		buf = appendTLV(buf, o.typ, o.value)
	}
	return buf
}

// assemble writes the fixed header, hop-by-hop region, single top-level
// message TLV, and trailer into dst, patches hdr_len/pkt_len, and
// returns the total length. dst must have capacity for at least
// MaxMsgSize bytes, per spec.md §4.1.3.
func assemble(dst []byte, pt PacketType, hopLimit, ccnRet, pingRet byte, hopByHop []byte, topType TopType, msgBody []byte, trailer []byte) (int, error) {
	total := FixedHeaderSize + len(hopByHop) + 4 + len(msgBody) + len(trailer)
	if total > MaxMsgSize {
		return 0, ErrEncodeTooLarge
	}
	if len(dst) < total {
		return 0, ErrEncodeTooLarge
	}
	hdrLen := FixedHeaderSize + len(hopByHop)
	WriteHeader(dst, Header{
		Version:    1,
		Type:       pt,
		PacketLen:  uint16(total),
		HopLimit:   hopLimit,
		CcninfoRet: ccnRet,
		PingRet:    pingRet,
		HeaderLen:  byte(hdrLen),
	})
	off := FixedHeaderSize
	off += copy(dst[off:], hopByHop)
	binary.BigEndian.PutUint16(dst[off:], uint16(topType))
	binary.BigEndian.PutUint16(dst[off+2:], uint16(len(msgBody)))
	off += 4
	off += copy(dst[off:], msgBody)
	off += copy(dst[off:], trailer)
	return off, nil
}

// buildValidationTrailer appends the validation algorithm TLV and a
// validation payload TLV computed over span (normally the packet bytes
// written so far), or returns nil if v is nil.
func buildValidationTrailer(v Validator, span []byte) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := v.Sign(span)
	if err != nil {
		return nil, err
	}
	var trailer []byte
	trailer = appendUint16TLV(trailer, uint16(TValidationAlg), v.AlgID())
	trailer = appendTLV(trailer, uint16(TValidationPayload), payload)
	return trailer, nil
}

// Validator is the minimal interface the codec needs from a validation
// algorithm plugin (see internal/wire/validate): compute a payload over
// a byte span. The codec does not verify validation payloads. Algorithm-specific key material and policy
// live entirely outside the codec, per spec.md §1.
type Validator interface {
	AlgID() uint16
	Sign(span []byte) ([]byte, error)
}

// ─── Interest ───

// InterestOptions carries the optional inputs of the Interest builder
// (spec.md §4.1.3).
type InterestOptions struct {
	Name         Name
	HopLimit     byte
	Chunk        *uint32
	Nonce        []byte // name-segment nonce, not a hop-by-hop option
	SymbolicCode []byte // inserted as a name segment before any CHUNK segment
	Lifetime     *uint16
	Piggyback    []byte // embedded as the message payload
	AppComponent *Segment
	Transport    []byte
	Validator    Validator
}

// BuildInterest writes an Interest packet into dst and returns its
// length.
func BuildInterest(dst []byte, o InterestOptions) (int, error) {
	name := o.Name
	if o.SymbolicCode != nil {
		name = insertBeforeChunk(name, Segment{Type: SegSymbolic, Value: o.SymbolicCode})
	}
	if o.Chunk != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], *o.Chunk)
		name.Segments = append(name.Segments, Segment{Type: SegChunk, Value: v[:]})
	}
	if o.Nonce != nil {
		name.Segments = append(name.Segments, Segment{Type: SegNonce, Value: o.Nonce})
	}
	if o.AppComponent != nil {
		name.Segments = append(name.Segments, *o.AppComponent)
	}

	var opts []hopOpt
	if o.Lifetime != nil {
		var v [2]byte
		binary.BigEndian.PutUint16(v[:], *o.Lifetime)
		opts = append(opts, hopOpt{OptIntLife, v[:]})
	}
	if o.Transport != nil {
		opts = append(opts, hopOpt{OptTransport, o.Transport})
	}
	hopByHop := assembleHopByHop(opts)

	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, name.Bytes())
	if o.Piggyback != nil {
		msgBody = appendTLV(msgBody, TPayload, o.Piggyback)
	}

	n, err := assemble(dst, PTInterest, o.HopLimit, 0, 0, hopByHop, TInterest, msgBody, nil)
	if err != nil {
		return 0, err
	}
	trailer, err := buildValidationTrailer(o.Validator, dst[:n])
	if err != nil {
		return 0, err
	}
	if len(trailer) == 0 {
		return n, nil
	}
	return assemble(dst, PTInterest, o.HopLimit, 0, 0, hopByHop, TInterest, msgBody, trailer)
}

func insertBeforeChunk(n Name, s Segment) Name {
	for i, seg := range n.Segments {
		if seg.Type == SegChunk {
			out := Name{Segments: make([]Segment, 0, len(n.Segments)+1)}
			out.Segments = append(out.Segments, n.Segments[:i]...)
			out.Segments = append(out.Segments, s)
			out.Segments = append(out.Segments, n.Segments[i:]...)
			return out
		}
	}
	out := Name{Segments: append(append([]Segment(nil), n.Segments...), s)}
	return out
}

// ─── Content Object ───

// ContentObjectOptions carries the optional inputs of the Content Object
// builder.
type ContentObjectOptions struct {
	Name      Name
	Payload   []byte
	Chunk     *uint32
	EndChunk  *uint32
	Expiry    *uint64
	RCT       *uint64 // recommended cache time, hop-by-hop
	Meta      []byte
	Validator Validator
}

// BuildContentObject writes a Content Object packet into dst.
func BuildContentObject(dst []byte, o ContentObjectOptions) (int, error) {
	name := o.Name
	if o.Meta != nil {
		name.Segments = append(name.Segments, Segment{Type: SegMeta, Value: o.Meta})
	}
	if o.Chunk != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], *o.Chunk)
		name.Segments = append(name.Segments, Segment{Type: SegChunk, Value: v[:]})
	}

	var opts []hopOpt
	if o.RCT != nil {
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], *o.RCT)
		opts = append(opts, hopOpt{OptCacheTime, v[:]})
	}
	hopByHop := assembleHopByHop(opts)

	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, name.Bytes())
	msgBody = appendTLV(msgBody, TPayload, o.Payload)
	if o.Expiry != nil {
		msgBody = appendUint64TLV(msgBody, TExpiry, *o.Expiry)
	}
	if o.EndChunk != nil {
		msgBody = appendUint32TLV(msgBody, TEndChunk, *o.EndChunk)
	}

	n, err := assemble(dst, PTObject, 0, 0, 0, hopByHop, TObject, msgBody, nil)
	if err != nil {
		return 0, err
	}
	trailer, err := buildValidationTrailer(o.Validator, dst[:n])
	if err != nil {
		return 0, err
	}
	if len(trailer) == 0 {
		return n, nil
	}
	return assemble(dst, PTObject, 0, 0, 0, hopByHop, TObject, msgBody, trailer)
}

// ─── Ccninfo request ───

// CcninfoRequestOptions carries the mandatory and optional inputs of the
// Ccninfo request builder (spec.md §4.3.1).
type CcninfoRequestOptions struct {
	Name      Name
	HopLimit  byte
	SkipHop   byte
	Flags     byte
	RequestID uint16
	NodeID    []byte
	Chunk     *uint32
	Validator Validator
}

// BuildCcninfoRequest writes a Ccninfo request packet into dst. It is
// always emitted with zero report blocks, per spec.md §4.3.1.
func BuildCcninfoRequest(dst []byte, o CcninfoRequestOptions) (int, error) {
	name := o.Name
	if o.Chunk != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], *o.Chunk)
		name.Segments = append(name.Segments, Segment{Type: SegChunk, Value: v[:]})
	}

	reqBody := make([]byte, 8) // req_id(2), skip_hop(1), flag(1), req_arrival_time(4)
	binary.BigEndian.PutUint16(reqBody[0:2], o.RequestID)
	reqBody[2] = o.SkipHop
	reqBody[3] = o.Flags
	// req_arrival_time is left zero; stamping hops record their arrival
	// times in report blocks, not here.
	hopByHop := assembleHopByHop([]hopOpt{{OptDiscReq, reqBody}})

	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, name.Bytes())
	msgBody = appendTLV(msgBody, TDiscContentOwner, o.NodeID)

	n, err := assemble(dst, PTRequest, o.HopLimit, 0, 0, hopByHop, TDiscovery, msgBody, nil)
	if err != nil {
		return 0, err
	}
	trailer, err := buildValidationTrailer(o.Validator, dst[:n])
	if err != nil {
		return 0, err
	}
	if len(trailer) == 0 {
		return n, nil
	}
	return assemble(dst, PTRequest, o.HopLimit, 0, 0, hopByHop, TDiscovery, msgBody, trailer)
}

// ─── Ccninfo reply ───

// CcninfoReplyOptions carries the inputs of the Ccninfo reply builder
// (spec.md §4.3.3): the reply is built fresh from the fields of the
// original request plus the accumulated report/reply chains, rather
// than literally mutating the request buffer, since Go slices make an
// in-place packet-type flip no cheaper than a rebuild.
type CcninfoReplyOptions struct {
	Name      Name
	HopLimit  byte
	RetCode   byte
	RequestID uint16
	SkipHop   byte
	Flags     byte
	NodeID    []byte // the origin's node identifier, carried forward from the request unchanged
	Reports   []ReportBlock
	Replies   []ReplyBlock
	Validator Validator
}

// BuildCcninfoReply writes a Ccninfo reply packet into dst.
func BuildCcninfoReply(dst []byte, o CcninfoReplyOptions) (int, error) {
	reqBody := make([]byte, 8) // req_id(2), skip_hop(1), flag(1), req_arrival_time(4)
	binary.BigEndian.PutUint16(reqBody[0:2], o.RequestID)
	reqBody[2] = o.SkipHop
	reqBody[3] = o.Flags
	discReqVal := reqBody

	hopByHop := assembleHopByHop([]hopOpt{{OptDiscReq, discReqVal}})
	for _, rb := range o.Reports {
		hopByHop = appendReportBlock(hopByHop, rb)
	}

	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, o.Name.Bytes())
	if o.NodeID != nil {
		msgBody = appendTLV(msgBody, TDiscContentOwner, o.NodeID)
	}
	for _, rb := range o.Replies {
		msgBody = appendReplyBlock(msgBody, rb)
	}

	n, err := assemble(dst, PTReply, o.HopLimit, o.RetCode, 0, hopByHop, TDiscovery, msgBody, nil)
	if err != nil {
		return 0, err
	}
	trailer, err := buildValidationTrailer(o.Validator, dst[:n])
	if err != nil {
		return 0, err
	}
	if len(trailer) == 0 {
		return n, nil
	}
	return assemble(dst, PTReply, o.HopLimit, o.RetCode, 0, hopByHop, TDiscovery, msgBody, trailer)
}

// ─── Cefping ───

// PingOptions carries the inputs shared by the Cefping request/reply
// builders.
type PingOptions struct {
	Name        Name
	HopLimit    byte
	ResponderID []byte
	RetCode     byte // reply only
}

// BuildPingRequest writes a Cefping request packet into dst.
func BuildPingRequest(dst []byte, o PingOptions) (int, error) {
	hopByHop := assembleHopByHop([]hopOpt{{OptPingReq, o.ResponderID}})
	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, o.Name.Bytes())
	return assemble(dst, PTPingReq, o.HopLimit, 0, 0, hopByHop, TPing, msgBody, nil)
}

// BuildPingReply writes a Cefping reply packet into dst.
func BuildPingReply(dst []byte, o PingOptions) (int, error) {
	hopByHop := assembleHopByHop([]hopOpt{{OptPingReq, o.ResponderID}})
	var msgBody []byte
	msgBody = appendTLV(msgBody, TName, o.Name.Bytes())
	return assemble(dst, PTPingRep, o.HopLimit, 0, o.RetCode, hopByHop, TPing, msgBody, nil)
}
