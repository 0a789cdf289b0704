package wire

import "encoding/binary"

// TLVView is a non-allocating view of one TLV record: Value aliases the
// input buffer the record was parsed from and must not outlive it.
type TLVView struct {
	Type  uint16
	Value []byte
}

// readTLV reads one TLV at the front of buf, returning the view and the
// number of bytes consumed (4 + length). It never allocates.
func readTLV(buf []byte) (TLVView, int, error) {
	if len(buf) < 4 {
		return TLVView{}, 0, ErrTruncated
	}
	typ := binary.BigEndian.Uint16(buf[0:2])
	length := binary.BigEndian.Uint16(buf[2:4])
	if len(buf) < 4+int(length) {
		return TLVView{}, 0, ErrTruncated
	}
	return TLVView{Type: typ, Value: buf[4 : 4+int(length)]}, 4 + int(length), nil
}

// appendTLV appends a TLV record to buf and returns the new slice. Used
// by builders and edits, which track their own size budget against
// MaxMsgSize.
func appendTLV(buf []byte, typ uint16, value []byte) []byte {
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], typ)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(value)))
	buf = append(buf, hdr[:]...)
	buf = append(buf, value...)
	return buf
}

// appendUint32TLV and appendUint64TLV are convenience wrappers for the
// very common fixed-width numeric TLVs (lifetime, cache time, expiry,
// chunk numbers, ...).
func appendUint16TLV(buf []byte, typ uint16, v uint16) []byte {
	var val [2]byte
	binary.BigEndian.PutUint16(val[:], v)
	return appendTLV(buf, typ, val[:])
}

func appendUint32TLV(buf []byte, typ uint16, v uint32) []byte {
	var val [4]byte
	binary.BigEndian.PutUint32(val[:], v)
	return appendTLV(buf, typ, val[:])
}

func appendUint64TLV(buf []byte, typ uint16, v uint64) []byte {
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], v)
	return appendTLV(buf, typ, val[:])
}
