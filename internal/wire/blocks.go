package wire

import "encoding/binary"

// ReportBlock is one per-hop stamp appended to a Ccninfo request as it
// transits a router: the hop's NTP-32 arrival time and node identifier.
type ReportBlock struct {
	ArrivalTime uint32 // NTP-32
	NodeID      []byte // borrowed when parsed, owned when built
}

// ReplyBlock describes one matched cache entry returned in a Ccninfo
// reply.
type ReplyBlock struct {
	ContentSize      uint32
	ContentCount     uint32
	ReceivedInterest uint32
	FirstSeq         uint32
	LastSeq          uint32
	CacheTime        uint32
	RemainLifetime   uint32
	Name             Name
}

// appendReportBlock appends an OPT_DISC_REPORT TLV with body
// [arrival_time(4), node_id_len(2), node_id(var)], matching the
// "Ccninfo stamp" wire scenario in spec.md §8.
func appendReportBlock(buf []byte, rb ReportBlock) []byte {
	body := make([]byte, 4, 4+2+len(rb.NodeID))
	binary.BigEndian.PutUint32(body, rb.ArrivalTime)
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(rb.NodeID)))
	body = append(body, l[:]...)
	body = append(body, rb.NodeID...)
	return appendTLV(buf, OptDiscReport, body)
}

// appendReplyBlock appends a T_DISC_REPLY TLV whose body is the seven
// 4-byte reply fields of spec.md §6 followed by a nested T_NAME TLV.
func appendReplyBlock(buf []byte, rb ReplyBlock) []byte {
	fields := [...]uint32{
		rb.ContentSize, rb.ContentCount, rb.ReceivedInterest,
		rb.FirstSeq, rb.LastSeq, rb.CacheTime, rb.RemainLifetime,
	}
	body := make([]byte, 0, 4*len(fields))
	var n [4]byte
	for _, v := range fields {
		binary.BigEndian.PutUint32(n[:], v)
		body = append(body, n[:]...)
	}
	body = appendTLV(body, TName, rb.Name.Bytes())
	return appendTLV(buf, TDiscReply, body)
}
