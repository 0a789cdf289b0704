package wire

import "encoding/binary"

// ParsedOptionHeader is the set of hop-by-hop option TLVs found while
// walking the header region. Every byte-slice field borrows from the
// input buffer.
type ParsedOptionHeader struct {
	Lifetime   *uint16
	CacheTime  *uint64
	DiscReq    *DiscReqView
	DiscReport []ReportBlock
	PingReq    []byte
	SeqNum     *uint32
	Transport  []byte
	Symbolic   []byte
	Org        []byte
	Unknown    []TLVView
}

// DiscReqView is the parsed Ccninfo request-block hop-by-hop option.
type DiscReqView struct {
	RequestID uint16
	SkipHop   byte
	Flags     byte
}

// ParsedMessage is the parsed top-level message TLV contents. Name and
// Payload alias the input buffer.
type ParsedMessage struct {
	TopType      TopType
	Name         Name
	Payload      []byte
	Expiry       *uint64
	EndChunk     *uint32
	DiscOwner    []byte
	ReplyBlocks  []ReplyBlock
	ValidAlgID   *uint16
	ValidPayload []byte
}

// acceptedTopTypes is the set of top-level types Parse recognizes;
// anything else is TopTypeMismatch per spec.md §4.1.4.
var acceptedTopTypes = map[TopType]bool{
	TInterest: true, TObject: true, TDiscovery: true, TPing: true,
}

// Parse walks the hop-by-hop region (header[8:headerLen]) and the
// message region (header[headerLen:]) of msg and returns parsed,
// non-allocating views of both. expectedTop, when non-zero, is checked
// against the top-level TLV's type.
func Parse(msg []byte, expectedTop TopType) (ParsedOptionHeader, ParsedMessage, error) {
	h, err := ReadHeader(msg)
	if err != nil {
		return ParsedOptionHeader{}, ParsedMessage{}, err
	}

	optHdr, err := parseOptionHeader(msg[FixedHeaderSize:h.HeaderLen])
	if err != nil {
		return ParsedOptionHeader{}, ParsedMessage{}, err
	}

	topTLV, consumed, err := readTLV(msg[h.HeaderLen:h.PacketLen])
	if err != nil {
		return ParsedOptionHeader{}, ParsedMessage{}, err
	}
	_ = consumed
	topType := TopType(topTLV.Type)
	if !acceptedTopTypes[topType] {
		return ParsedOptionHeader{}, ParsedMessage{}, ErrTopTypeMismatch
	}
	if expectedTop != 0 && topType != expectedTop {
		return ParsedOptionHeader{}, ParsedMessage{}, ErrTopTypeMismatch
	}

	pm, err := parseMessageBody(topType, topTLV.Value)
	if err != nil {
		return ParsedOptionHeader{}, ParsedMessage{}, err
	}

	// Validation algorithm/payload trail the top-level message TLV.
	rest := msg[int(h.HeaderLen)+consumed : h.PacketLen]
	if len(rest) > 0 {
		algTLV, n1, err := readTLV(rest)
		if err == nil && algTLV.Type == uint16(TValidationAlg) {
			if len(algTLV.Value) >= 2 {
				id := binary.BigEndian.Uint16(algTLV.Value)
				pm.ValidAlgID = &id
			}
			rest = rest[n1:]
			if len(rest) > 0 {
				payTLV, _, err := readTLV(rest)
				if err == nil && payTLV.Type == uint16(TValidationPayload) {
					pm.ValidPayload = payTLV.Value
				}
			}
		}
	}

	return optHdr, pm, nil
}

func parseOptionHeader(region []byte) (ParsedOptionHeader, error) {
	var oh ParsedOptionHeader
	haveLifetime, haveCacheTime, haveSeqNum := false, false, false

	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return ParsedOptionHeader{}, err
		}
		off += consumed

		switch tlv.Type {
		case OptIntLife:
			if haveLifetime {
				return ParsedOptionHeader{}, ErrDuplicateSingleton
			}
			haveLifetime = true
			if len(tlv.Value) != 2 {
				return ParsedOptionHeader{}, ErrTruncated
			}
			v := binary.BigEndian.Uint16(tlv.Value)
			oh.Lifetime = &v
		case OptCacheTime:
			if haveCacheTime {
				return ParsedOptionHeader{}, ErrDuplicateSingleton
			}
			haveCacheTime = true
			if len(tlv.Value) != 8 {
				return ParsedOptionHeader{}, ErrTruncated
			}
			v := binary.BigEndian.Uint64(tlv.Value)
			oh.CacheTime = &v
		case OptDiscReq:
			if oh.DiscReq != nil {
				return ParsedOptionHeader{}, ErrDuplicateSingleton
			}
			if len(tlv.Value) < 4 {
				return ParsedOptionHeader{}, ErrTruncated
			}
			oh.DiscReq = &DiscReqView{
				RequestID: binary.BigEndian.Uint16(tlv.Value[0:2]),
				SkipHop:   tlv.Value[2],
				Flags:     tlv.Value[3],
			}
		case OptDiscReport:
			if len(tlv.Value) < 6 {
				return ParsedOptionHeader{}, ErrTruncated
			}
			arrival := binary.BigEndian.Uint32(tlv.Value[0:4])
			idLen := int(binary.BigEndian.Uint16(tlv.Value[4:6]))
			if len(tlv.Value) < 6+idLen {
				return ParsedOptionHeader{}, ErrTruncated
			}
			oh.DiscReport = append(oh.DiscReport, ReportBlock{
				ArrivalTime: arrival,
				NodeID:      tlv.Value[6 : 6+idLen],
			})
		case OptPingReq:
			oh.PingReq = tlv.Value
		case OptSeqNum:
			if haveSeqNum {
				return ParsedOptionHeader{}, ErrDuplicateSingleton
			}
			haveSeqNum = true
			if len(tlv.Value) != 4 {
				return ParsedOptionHeader{}, ErrTruncated
			}
			v := binary.BigEndian.Uint32(tlv.Value)
			oh.SeqNum = &v
		case OptTransport:
			oh.Transport = tlv.Value
		case OptSymbolic:
			oh.Symbolic = tlv.Value
		case OptOrg:
			oh.Org = tlv.Value
		case OptMsgHash, OptEFI, OptIUR:
			// TBD containers: opaque, forward-compatible skip.
			oh.Unknown = append(oh.Unknown, tlv)
		default:
			oh.Unknown = append(oh.Unknown, tlv)
		}
	}
	return oh, nil
}

func parseMessageBody(topType TopType, region []byte) (ParsedMessage, error) {
	pm := ParsedMessage{TopType: topType}
	haveName := false

	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return ParsedMessage{}, err
		}
		off += consumed

		switch tlv.Type {
		case TName:
			if haveName {
				return ParsedMessage{}, ErrDuplicateSingleton
			}
			haveName = true
			n, err := ParseName(tlv.Value)
			if err != nil {
				return ParsedMessage{}, err
			}
			pm.Name = n
		case TPayload:
			// TDiscContentOwner shares type 0x0001 with TPayload.
			if topType == TDiscovery {
				pm.DiscOwner = tlv.Value
			} else {
				pm.Payload = tlv.Value
			}
		case TExpiry:
			if len(tlv.Value) != 8 {
				return ParsedMessage{}, ErrTruncated
			}
			v := binary.BigEndian.Uint64(tlv.Value)
			pm.Expiry = &v
		case TEndChunk:
			if len(tlv.Value) != 4 {
				return ParsedMessage{}, ErrTruncated
			}
			v := binary.BigEndian.Uint32(tlv.Value)
			pm.EndChunk = &v
		case TDiscReply:
			rb, err := parseReplyBlock(tlv.Value)
			if err != nil {
				return ParsedMessage{}, err
			}
			pm.ReplyBlocks = append(pm.ReplyBlocks, rb)
		default:
			// unknown message TLV: ignored, forward-compatible.
		}
	}
	return pm, nil
}

func parseReplyBlock(body []byte) (ReplyBlock, error) {
	if len(body) < 28 {
		return ReplyBlock{}, ErrTruncated
	}
	rb := ReplyBlock{
		ContentSize:      binary.BigEndian.Uint32(body[0:4]),
		ContentCount:     binary.BigEndian.Uint32(body[4:8]),
		ReceivedInterest: binary.BigEndian.Uint32(body[8:12]),
		FirstSeq:         binary.BigEndian.Uint32(body[12:16]),
		LastSeq:          binary.BigEndian.Uint32(body[16:20]),
		CacheTime:        binary.BigEndian.Uint32(body[20:24]),
		RemainLifetime:   binary.BigEndian.Uint32(body[24:28]),
	}
	rest := body[28:]
	if len(rest) > 0 {
		tlv, _, err := readTLV(rest)
		if err != nil {
			return ReplyBlock{}, err
		}
		if tlv.Type == TName {
			n, err := ParseName(tlv.Value)
			if err != nil {
				return ReplyBlock{}, err
			}
			rb.Name = n
		}
	}
	return rb, nil
}
