package wire

import "encoding/binary"

// Header is the fixed 8-byte packet header common to every packet form.
// hdr_len is the byte offset at which the top-level message TLV begins;
// pkt_len is the length of the whole packet.
type Header struct {
	Version     byte
	Type        PacketType
	PacketLen   uint16
	HopLimit    byte
	CcninfoRet  byte
	PingRet     byte
	HeaderLen   byte
}

// WriteHeader writes h into buf[0:8]. buf must have len >= 8.
func WriteHeader(buf []byte, h Header) {
	buf[offVersion] = h.Version
	buf[offPktType] = byte(h.Type)
	binary.BigEndian.PutUint16(buf[offPktLen:], h.PacketLen)
	buf[offHopLimit] = h.HopLimit
	buf[offCcnRet] = h.CcninfoRet
	buf[offPingRet] = h.PingRet
	buf[offHeaderLen] = h.HeaderLen
}

// ReadHeader reads the fixed header from buf and validates the
// well-formedness invariant of spec.md §4.1.1: hdr_len >= 8 and
// pkt_len >= hdr_len.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < FixedHeaderSize {
		return Header{}, ErrTruncated
	}
	h := Header{
		Version:    buf[offVersion],
		Type:       PacketType(buf[offPktType]),
		PacketLen:  binary.BigEndian.Uint16(buf[offPktLen:]),
		HopLimit:   buf[offHopLimit],
		CcninfoRet: buf[offCcnRet],
		PingRet:    buf[offPingRet],
		HeaderLen:  buf[offHeaderLen],
	}
	if h.HeaderLen < FixedHeaderSize {
		return Header{}, ErrTruncated
	}
	if int(h.PacketLen) < int(h.HeaderLen) {
		return Header{}, ErrTruncated
	}
	if len(buf) < int(h.PacketLen) {
		return Header{}, ErrTruncated
	}
	return h, nil
}

// setPacketLen and setHeaderLen patch the two length fields in place,
// used by builders and in-place editors after they grow or shrink the
// hop-by-hop region.
func setPacketLen(buf []byte, n uint16) {
	binary.BigEndian.PutUint16(buf[offPktLen:], n)
}

func setHeaderLen(buf []byte, n byte) {
	buf[offHeaderLen] = n
}

func headerLen(buf []byte) byte { return buf[offHeaderLen] }
