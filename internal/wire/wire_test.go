package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIRoundTrip(t *testing.T) {
	cases := []string{
		"ccnx:/",
		"ccnx:/a",
		"ccnx:/a/b/c",
		"ccn:/x/y",
	}
	for _, uri := range cases {
		n, err := URIToName(uri)
		require.NoError(t, err, uri)
		back := n.Bytes()
		n2, err := ParseName(back)
		require.NoError(t, err, uri)
		assert.Equal(t, n.Bytes(), n2.Bytes(), uri)

		n3, err := URIToName(NameToURI(n))
		require.NoError(t, err, uri)
		assert.Equal(t, n.Bytes(), n3.Bytes(), uri)
	}
}

func TestURIToName_RejectsBadScheme(t *testing.T) {
	_, err := URIToName("http://example.com")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, FixedHeaderSize)
	WriteHeader(buf, Header{
		Version:    1,
		Type:       PTInterest,
		PacketLen:  42,
		HopLimit:   32,
		CcninfoRet: 0,
		PingRet:    0,
		HeaderLen:  8,
	})
	h, err := ReadHeader(append(buf, make([]byte, 34)...))
	require.NoError(t, err)
	assert.Equal(t, PTInterest, h.Type)
	assert.Equal(t, uint16(42), h.PacketLen)
	assert.Equal(t, byte(32), h.HopLimit)
}

func TestReadHeader_RejectsShortHeaderLen(t *testing.T) {
	buf := make([]byte, FixedHeaderSize)
	WriteHeader(buf, Header{Version: 1, Type: PTInterest, PacketLen: 8, HeaderLen: 4})
	_, err := ReadHeader(buf)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParseEncodeRoundTrip_Interest(t *testing.T) {
	name, err := URIToName("ccnx:/a/b")
	require.NoError(t, err)

	dst := make([]byte, MaxMsgSize)
	lifetime := uint16(4000)
	n, err := BuildInterest(dst, InterestOptions{Name: name, HopLimit: 32, Lifetime: &lifetime})
	require.NoError(t, err)

	optHdr, msg, err := Parse(dst[:n], TInterest)
	require.NoError(t, err)
	require.NotNil(t, optHdr.Lifetime)
	assert.Equal(t, lifetime, *optHdr.Lifetime)
	assert.Equal(t, name.Bytes(), msg.Name.Bytes())
}

func TestParseEncodeRoundTrip_ContentObject(t *testing.T) {
	name, err := URIToName("ccnx:/a/b/c")
	require.NoError(t, err)

	dst := make([]byte, MaxMsgSize)
	payload := []byte("hello world")
	n, err := BuildContentObject(dst, ContentObjectOptions{Name: name, Payload: payload})
	require.NoError(t, err)

	_, msg, err := Parse(dst[:n], TObject)
	require.NoError(t, err)
	assert.Equal(t, payload, msg.Payload)
	assert.Equal(t, name.Bytes(), msg.Name.Bytes())
}

func TestParseEncodeRoundTrip_RejectsWrongTopType(t *testing.T) {
	name, err := URIToName("ccnx:/a")
	require.NoError(t, err)
	dst := make([]byte, MaxMsgSize)
	n, err := BuildInterest(dst, InterestOptions{Name: name, HopLimit: 32})
	require.NoError(t, err)

	_, _, err = Parse(dst[:n], TObject)
	assert.ErrorIs(t, err, ErrTopTypeMismatch)
}

func TestSeqNumInsertion(t *testing.T) {
	name, err := URIToName("ccnx:/a")
	require.NoError(t, err)
	dst := make([]byte, MaxMsgSize)
	n, err := BuildInterest(dst, InterestOptions{Name: name, HopLimit: 32})
	require.NoError(t, err)
	original := append([]byte(nil), dst[:n]...)

	edited, err := UpdateSeqNum(original, 42)
	require.NoError(t, err)
	assert.Equal(t, len(original)+8, len(edited))

	h, err := ReadHeader(edited)
	require.NoError(t, err)
	assert.Equal(t, len(original)+8, int(h.PacketLen))
	assert.Equal(t, int(headerLen(original))+8, int(h.HeaderLen))

	optHdr, _, err := Parse(edited, TInterest)
	require.NoError(t, err)
	require.NotNil(t, optHdr.SeqNum)
	assert.Equal(t, uint32(42), *optHdr.SeqNum)

	// A second call overwrites in place, without growing the packet.
	edited2, err := UpdateSeqNum(edited, 99)
	require.NoError(t, err)
	assert.Equal(t, len(edited), len(edited2))
	optHdr2, _, err := Parse(edited2, TInterest)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), *optHdr2.SeqNum)
}

func TestAddSymbolicCode_InsertedBeforeChunk(t *testing.T) {
	name, err := URIToName("ccnx:/a/b")
	require.NoError(t, err)
	dst := make([]byte, MaxMsgSize)
	chunk := uint32(3)
	n, err := BuildInterest(dst, InterestOptions{Name: name, HopLimit: 32, Chunk: &chunk})
	require.NoError(t, err)

	edited, err := AddSymbolicCode(append([]byte(nil), dst[:n]...), []byte("sym"))
	require.NoError(t, err)

	_, msg, err := Parse(edited, TInterest)
	require.NoError(t, err)
	require.Len(t, msg.Name.Segments, 4)
	assert.Equal(t, SegSymbolic, msg.Name.Segments[2].Type)
	assert.Equal(t, SegChunk, msg.Name.Segments[3].Type)
}
