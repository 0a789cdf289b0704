package wire

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Segment is one (type, length, bytes) name component. Value borrows from
// the input buffer when the segment came from Parse, and is owned when
// the segment was built from a URI or constructed programmatically.
type Segment struct {
	Type  SegmentType
	Value []byte
}

// Name is an ordered sequence of name segments. Two names are equal, and
// one is a prefix of another, iff their segment sequences agree up to
// the shorter one's length on segment boundaries -- never on arbitrary
// byte offsets.
type Name struct {
	Segments []Segment
}

// Bytes renders the concatenated wire form of the name: each segment as
// a TLV record, back to back. This is the name's identity for hashing
// and prefix match (FIB keys on exactly this byte string).
func (n Name) Bytes() []byte {
	var buf []byte
	for _, s := range n.Segments {
		buf = appendTLV(buf, uint16(s.Type), s.Value)
	}
	return buf
}

// IsPrefixOf reports whether n is a segment-aligned prefix of other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n.Segments) > len(other.Segments) {
		return false
	}
	for i, s := range n.Segments {
		o := other.Segments[i]
		if s.Type != o.Type || string(s.Value) != string(o.Value) {
			return false
		}
	}
	return true
}

// WithoutChunk strips a trailing CHUNK segment if present, returning the
// stripped name, the chunk number, and whether a chunk segment was found.
func (n Name) WithoutChunk() (Name, uint32, bool) {
	if len(n.Segments) == 0 {
		return n, 0, false
	}
	last := n.Segments[len(n.Segments)-1]
	if last.Type != SegChunk || len(last.Value) != 4 {
		return n, 0, false
	}
	stripped := Name{Segments: append([]Segment(nil), n.Segments[:len(n.Segments)-1]...)}
	return stripped, binary.BigEndian.Uint32(last.Value), true
}

// ParseName decodes a concatenated sequence of segment TLVs (e.g. the
// value of a T_NAME message TLV) into a Name. Segment values alias buf.
func ParseName(buf []byte) (Name, error) {
	var n Name
	off := 0
	for off < len(buf) {
		tlv, consumed, err := readTLV(buf[off:])
		if err != nil {
			return Name{}, err
		}
		n.Segments = append(n.Segments, Segment{Type: SegmentType(tlv.Type), Value: tlv.Value})
		off += consumed
	}
	return n, nil
}

// SegmentBoundaries returns the cumulative byte offset after each
// segment of buf (buf being a name's wire form), used by the FIB's
// longest-prefix walk to shorten a query to the previous legal length
// without fully re-parsing into a Name.
func SegmentBoundaries(buf []byte) ([]int, error) {
	var bounds []int
	off := 0
	for off < len(buf) {
		if len(buf) < off+4 {
			return nil, ErrTruncated
		}
		length := int(binary.BigEndian.Uint16(buf[off+2 : off+4]))
		next := off + 4 + length
		if next > len(buf) {
			return nil, ErrTruncated
		}
		off = next
		bounds = append(bounds, off)
	}
	return bounds, nil
}

// ─── URI <-> Name ───

const appPrefix = "APP:"

// URIToName converts a ccnx:/ (or ccn:/) URI into a Name, recognizing the
// Chunk=, META= and APP:<index>= typed-segment grammar of spec.md §4.1.2.
func URIToName(uri string) (Name, error) {
	rest, ok := strings.CutPrefix(uri, "ccnx:/")
	if !ok {
		rest, ok = strings.CutPrefix(uri, "ccn:/")
	}
	if !ok {
		return Name{}, fmt.Errorf("%w: uri must start with ccnx:/ or ccn:/: %q", ErrInvalidArgument, uri)
	}

	var n Name
	if rest == "" {
		return n, nil
	}
	for _, raw := range strings.Split(rest, "/") {
		if raw == "" {
			continue // drop empty trailing segments, per canonicalization rule
		}
		seg, err := decodeSegment(raw)
		if err != nil {
			return Name{}, err
		}
		n.Segments = append(n.Segments, seg)
	}
	return n, nil
}

func decodeSegment(raw string) (Segment, error) {
	switch {
	case strings.HasPrefix(raw, "Chunk="):
		num, err := strconv.ParseUint(raw[len("Chunk="):], 10, 32)
		if err != nil {
			return Segment{}, fmt.Errorf("%w: bad Chunk= segment %q: %v", ErrInvalidArgument, raw, err)
		}
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], uint32(num))
		return Segment{Type: SegChunk, Value: v[:]}, nil

	case strings.HasPrefix(raw, "META="):
		val, err := url.PathUnescape(raw[len("META="):])
		if err != nil {
			return Segment{}, fmt.Errorf("%w: bad META= segment %q: %v", ErrInvalidArgument, raw, err)
		}
		return Segment{Type: SegMeta, Value: []byte(val)}, nil

	case strings.HasPrefix(raw, appPrefix):
		eq := strings.IndexByte(raw, '=')
		if eq < 0 {
			return Segment{}, fmt.Errorf("%w: bad APP: segment %q: missing '='", ErrInvalidArgument, raw)
		}
		idxStr := raw[len(appPrefix):eq]
		idx, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil || idx > SegAppMax-SegAppMin {
			return Segment{}, fmt.Errorf("%w: bad APP: index in %q", ErrInvalidArgument, raw)
		}
		val, err := url.PathUnescape(raw[eq+1:])
		if err != nil {
			return Segment{}, fmt.Errorf("%w: bad APP: value %q: %v", ErrInvalidArgument, raw, err)
		}
		return Segment{Type: SegmentType(SegAppMin + idx), Value: []byte(val)}, nil

	default:
		val, err := url.PathUnescape(raw)
		if err != nil {
			return Segment{}, fmt.Errorf("%w: bad segment %q: %v", ErrInvalidArgument, raw, err)
		}
		return Segment{Type: SegNameSegment, Value: []byte(val)}, nil
	}
}

// NameToURI renders a Name back to its ccnx:/ URI form, the inverse of
// URIToName for NAMESEGMENT, CHUNK, META and APP segments. Other segment
// types (nonce, symbolic code, IPID) render as plain path components
// with no type prefix, so URIToName reads them back as NAMESEGMENT.
func NameToURI(n Name) string {
	var b strings.Builder
	b.WriteString("ccnx:")
	for _, s := range n.Segments {
		b.WriteByte('/')
		switch s.Type {
		case SegChunk:
			if len(s.Value) == 4 {
				b.WriteString("Chunk=")
				b.WriteString(strconv.FormatUint(uint64(binary.BigEndian.Uint32(s.Value)), 10))
				continue
			}
			b.WriteString(encodeSegmentBytes(s.Value))
		case SegMeta:
			b.WriteString("META=")
			b.WriteString(encodeSegmentBytes(s.Value))
		case SegNameSegment:
			b.WriteString(encodeSegmentBytes(s.Value))
		default:
			if s.Type >= SegAppMin && s.Type <= SegAppMax {
				b.WriteString(appPrefix)
				b.WriteString(strconv.FormatUint(uint64(s.Type-SegAppMin), 10))
				b.WriteByte('=')
				b.WriteString(encodeSegmentBytes(s.Value))
			} else {
				b.WriteString(encodeSegmentBytes(s.Value))
			}
		}
	}
	if len(n.Segments) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// encodeSegmentBytes percent-encodes a raw segment value for embedding
// in a single path component, leaving ordinary printable bytes as-is.
func encodeSegmentBytes(v []byte) string {
	return url.PathEscape(string(v))
}
