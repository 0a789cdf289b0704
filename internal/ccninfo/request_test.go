package ccninfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/wire"
)

func TestNewRequest_RequestIDHasForcedHighBits(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)

	req, err := NewRequest(name, 32, 0, FlagFullDiscover, []byte{127, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), byte(req.RequestID>>8)&0x80)
	assert.Equal(t, byte(0x80), byte(req.RequestID)&0x80)
}

func TestNewRequest_RejectsSkipHopNotLessThanHopLimit(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)

	_, err = NewRequest(name, 5, 5, 0, []byte{127, 0, 0, 1})
	assert.ErrorIs(t, err, wire.ErrInvalidArgument)

	_, err = NewRequest(name, 5, 6, 0, []byte{127, 0, 0, 1})
	assert.ErrorIs(t, err, wire.ErrInvalidArgument)
}

func TestNewRequest_DetectsNodeIDWhenNil(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)

	req, err := NewRequest(name, 32, 0, 0, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, req.NodeID)
}

func TestRequest_Build(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a/b")
	require.NoError(t, err)
	req, err := NewRequest(name, 32, 1, FlagCache, []byte{10, 0, 0, 1})
	require.NoError(t, err)

	dst := make([]byte, wire.MaxMsgSize)
	n, err := req.Build(dst, nil)
	require.NoError(t, err)

	parsed, err := wire.ParseCcninfo(dst[:n])
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, parsed.RequestID)
	assert.Equal(t, req.SkipHop, parsed.SkipHop)
	assert.Equal(t, req.Flags, parsed.Flags)
}
