package wire

import "encoding/binary"

// The edit functions in this file perform the in-place hop-by-hop
// rewrites of spec.md §4.1.5. Each takes the current packet (len ==
// current pkt_len) and returns the edited packet; the returned slice is
// the input itself when the edit overwrites a value in place, and a
// freshly allocated one whenever the packet grows -- callers must
// always use the returned slice, never the original, exactly as with any
// other append-based Go buffer growth.

// UpdateSeqNum overwrites an existing OPT_SEQNUM TLV's value, or inserts
// one (type 0x8008, 4-byte value) if absent, adjusting hdr_len and
// pkt_len. This realizes the "Sequence-number insertion" scenario of
// spec.md §8: inserting OPT_SEQNUM=42 into an L-byte packet yields an
// (L+8)-byte packet with hdr_len and pkt_len both increased by 8.
func UpdateSeqNum(buf []byte, seq uint32) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	region := buf[FixedHeaderSize:h.HeaderLen]

	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return nil, err
		}
		if tlv.Type == OptSeqNum {
			if len(tlv.Value) != 4 {
				return nil, ErrTruncated
			}
			valueOff := FixedHeaderSize + off + 4
			binary.BigEndian.PutUint32(buf[valueOff:], seq)
			return buf, nil
		}
		off += consumed
	}

	// Not present: insert at the tail of the hop-by-hop region.
	var val [4]byte
	binary.BigEndian.PutUint32(val[:], seq)
	tlvBytes := appendTLV(nil, OptSeqNum, val[:])
	return insertBytes(buf, int(h.HeaderLen), tlvBytes)
}

// UpdateCacheTime rewrites the 8-byte value of an existing OPT_CACHETIME
// TLV. It is a no-op (returns buf unchanged) if the TLV is absent, per
// spec.md §4.1.5.
func UpdateCacheTime(buf []byte, cacheTime uint64) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	region := buf[FixedHeaderSize:h.HeaderLen]

	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return nil, err
		}
		if tlv.Type == OptCacheTime {
			if len(tlv.Value) != 8 {
				return nil, ErrTruncated
			}
			valueOff := FixedHeaderSize + off + 4
			binary.BigEndian.PutUint64(buf[valueOff:], cacheTime)
			return buf, nil
		}
		off += consumed
	}
	return buf, nil
}

// AddSymbolicCode appends a SYMBOLIC_CODE name segment to a Content
// Object's name, inserted before any existing CHUNK segment.
func AddSymbolicCode(buf []byte, code []byte) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	msgRegion := buf[h.HeaderLen:h.PacketLen]
	topTLV, _, err := readTLV(msgRegion)
	if err != nil {
		return nil, err
	}

	nameOff, nameLen, err := findNameTLV(topTLV.Value)
	if err != nil {
		return nil, err
	}
	// nameOff/nameLen are relative to topTLV.Value; translate to
	// absolute offsets within buf.
	topValueAbs := int(h.HeaderLen) + 4
	nameBytesAbs := topValueAbs + nameOff + 4

	nameBytes := buf[nameBytesAbs : nameBytesAbs+nameLen]
	n, err := ParseName(append([]byte(nil), nameBytes...))
	if err != nil {
		return nil, err
	}
	n = insertBeforeChunk(n, Segment{Type: SegSymbolic, Value: code})
	newNameBytes := n.Bytes()

	return replaceNameTLV(buf, nameBytesAbs, nameLen, newNameBytes)
}

// AddCcninfoStamp appends an OPT_DISC_REPORT TLV at the tail of the
// hop-by-hop region, carrying (arrival NTP-32, node-id length, node-id
// bytes), per spec.md §4.3.2. It returns ErrStampOverflow if the stamp
// count would exceed MaxStampNum, the packet would exceed MaxMsgSize, or
// the hop-by-hop region would outgrow the 255 bytes the one-byte hdr_len
// can express.
func AddCcninfoStamp(buf []byte, arrivalTime uint32, nodeID []byte) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	region := buf[FixedHeaderSize:h.HeaderLen]

	count := 0
	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return nil, err
		}
		if tlv.Type == OptDiscReport {
			count++
		}
		off += consumed
	}
	if count >= MaxStampNum {
		return nil, ErrStampOverflow
	}

	stampBytes := appendReportBlock(nil, ReportBlock{ArrivalTime: arrivalTime, NodeID: nodeID})
	if int(h.PacketLen)+len(stampBytes) > MaxMsgSize {
		return nil, ErrStampOverflow
	}
	if int(h.HeaderLen)+len(stampBytes) > 0xFF {
		return nil, ErrStampOverflow
	}
	return insertBytes(buf, int(h.HeaderLen), stampBytes)
}

// insertBytes splices data into buf at byte offset at, shifting
// everything from at onward to the right, and patches hdr_len/pkt_len
// by len(data). at must fall inside the hop-by-hop region (i.e. at the
// tail of it, since all current callers append there).
func insertBytes(buf []byte, at int, data []byte) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	newLen := len(buf) + len(data)
	if newLen > MaxMsgSize {
		return nil, ErrEncodeTooLarge
	}

	out := make([]byte, newLen)
	copy(out, buf[:at])
	copy(out[at:], data)
	copy(out[at+len(data):], buf[at:])

	setHeaderLen(out, byte(int(h.HeaderLen)+len(data)))
	setPacketLen(out, uint16(int(h.PacketLen)+len(data)))
	return out, nil
}

// findNameTLV locates the T_NAME TLV inside a message-region byte span
// (the value of the top-level message TLV) and returns its offset and
// value length (both relative to region).
func findNameTLV(region []byte) (int, int, error) {
	off := 0
	for off < len(region) {
		tlv, consumed, err := readTLV(region[off:])
		if err != nil {
			return 0, 0, err
		}
		if tlv.Type == TName {
			return off, len(tlv.Value), nil
		}
		off += consumed
	}
	return 0, 0, ErrInvalidArgument
}

// replaceNameTLV swaps the oldNameLen-byte name value at nameBytesAbs
// for newNameBytes, fixing up the enclosing T_NAME TLV's length field,
// the enclosing top-level TLV's length field, and pkt_len (hdr_len is
// unchanged, since the name lies after the hop-by-hop region). Since the name is nested two TLV containers deep,
// growing it changes three length fields, not one.
func replaceNameTLV(buf []byte, nameBytesAbs, oldNameLen int, newNameBytes []byte) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	delta := len(newNameBytes) - oldNameLen
	newTotal := int(h.PacketLen) + delta
	if newTotal > MaxMsgSize {
		return nil, ErrEncodeTooLarge
	}

	out := make([]byte, newTotal)
	copy(out, buf[:nameBytesAbs])
	copy(out[nameBytesAbs:], newNameBytes)
	copy(out[nameBytesAbs+len(newNameBytes):], buf[nameBytesAbs+oldNameLen:])

	// Fix up the T_NAME TLV's own length field, at nameBytesAbs-2.
	binary.BigEndian.PutUint16(out[nameBytesAbs-2:], uint16(len(newNameBytes)))

	// Fix up the enclosing top-level TLV's length field.
	topLenOff := int(h.HeaderLen) + 2
	oldTopLen := binary.BigEndian.Uint16(buf[topLenOff:])
	binary.BigEndian.PutUint16(out[topLenOff:], uint16(int(oldTopLen)+delta))

	setPacketLen(out, uint16(newTotal))
	return out, nil
}
