// Package wire implements the nested TLV packet codec for Interest,
// Content Object and Ccninfo discovery messages: encode, parse, and the
// small set of in-place hop-by-hop edits a forwarder needs on transit.
package wire

// NICT Private Enterprise Number, used to tag organization-specific TLVs.
const NICTPen = 0x00C96C

// Size limits.
const (
	MaxMsgSize    = 8192 // CefC_Max_Msg_Size
	MaxHeaderSize = 255  // CefC_Max_Header_Size
	MaxNodeID     = 64   // CefC_Max_Node_Id
	MaxStampNum   = 20   // CefC_Max_Stamp_Num
)

// Fixed-header field widths and offsets.
const (
	FixedHeaderSize = 8

	offVersion   = 0
	offPktType   = 1
	offPktLen    = 2
	offHopLimit  = 4
	offCcnRet    = 5
	offPingRet   = 6
	offHeaderLen = 7
)

// PacketType is the one-byte packet-type field of the fixed header.
type PacketType byte

const (
	PTInterest  PacketType = 0x00
	PTObject    PacketType = 0x01
	PTIntReturn PacketType = 0x02
	PTRequest   PacketType = 0x03 // Ccninfo request
	PTReply     PacketType = 0x04 // Ccninfo reply
	PTPingReq   PacketType = 0x05
	PTPingRep   PacketType = 0x06
)

// TopType is the type field of the single top-level message TLV.
type TopType uint16

const (
	TInterest           TopType = 0x0001
	TObject             TopType = 0x0002
	TValidationAlg      TopType = 0x0003
	TValidationPayload  TopType = 0x0004
	TDiscovery          TopType = 0x0005
	TPing               TopType = 0x0006
)

// Message-region TLV types (inside the top-level container).
const (
	TName         uint16 = 0x0000
	TPayload      uint16 = 0x0001
	TKeyIDRestr   uint16 = 0x0002
	TObjHashRestr uint16 = 0x0003
	TPayloadType  uint16 = 0x0005
	TExpiry       uint16 = 0x0006
	TDiscReply    uint16 = 0x0007 // Ccninfo reply block
	TEndChunk     uint16 = 0x000C
	TOrg          uint16 = 0x0FFF
)

// Ccninfo message-region TLVs. TDiscContentOwner carries the originator's
// node identifier directly in the discovery message region; it shares
// type 0x0001 with TPayload, and Parse reads a 0x0001 TLV as the owner
// inside a TDiscovery message and as the payload otherwise.
const (
	TDiscContent      uint16 = 0x0000
	TDiscContentOwner uint16 = 0x0001
)

// Name segment types.
type SegmentType uint16

const (
	SegNameSegment SegmentType = 0x0001
	SegIPID        SegmentType = 0x0002
	SegChunk       SegmentType = 0x0010
	SegMeta        SegmentType = 0x0011
	SegNonce       SegmentType = 0x0012
	SegSymbolic    SegmentType = 0x0013
)

// Reserved range for application-defined name components.
const (
	SegAppMin = 0x1000
	SegAppMax = 0x1FFF
)

// Hop-by-hop option TLV types.
const (
	OptIntLife    uint16 = 0x0001
	OptCacheTime  uint16 = 0x0002
	OptMsgHash    uint16 = 0x0003 // TBD in the upstream protocol, opaque only
	OptDiscReq    uint16 = 0x0008 // Ccninfo request block
	OptDiscReport uint16 = 0x0009 // Ccninfo report block (per-hop stamp)
	OptPingReq    uint16 = 0x000A
	OptOrg        uint16 = 0x0FFF
	OptSymbolic   uint16 = 0x1001
	OptTransport  uint16 = 0x1002
	OptEFI        uint16 = 0x1003 // TBD, opaque only
	OptIUR        uint16 = 0x1004 // TBD, opaque only
	OptSeqNum     uint16 = 0x8008 // private: sequence-number stamping
)

// Ccninfo request-block flag bits.
const (
	CtOpNone         byte = 0x00
	CtOpFullDiscover byte = 0x04
	CtOpCache        byte = 0x01
	CtOpPublisher    byte = 0x02
)

// Validation algorithm identifiers recognized on the wire (registered, not
// implemented in crypto depth -- see internal/wire/validate).
const (
	AlgInvalid    uint16 = 0x0000
	AlgCRC32C     uint16 = 0x0002
	AlgHMACSHA256 uint16 = 0x0004
	AlgRSASHA256  uint16 = 0x0005
)

// wire sizes of fixed-width TLV values.
const (
	sizeChunkNum      = 4
	sizeSeqNum        = 4
	sizeCacheTime     = 8
	sizeExpiry        = 8
	sizeReqArrivalT   = 4
	sizeSymbolicCode  = 8
	sizeDiscReqBody   = 8  // req_id(2) skip_hop(1) flag(1) req_arrival_time(4)
	sizeDiscReplyBody = 28 // cont_size,cont_cnt,rcv_int,first_seq,last_seq,cache_time,remain_time (7 x 4)
)
