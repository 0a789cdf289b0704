package ccninfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/wire"
)

func buildRequestFrame(t *testing.T, hopLimit byte) (*wire.ParsedCcninfo, []byte) {
	t.Helper()
	name, err := wire.URIToName("ccnx:/a/b")
	require.NoError(t, err)
	req, err := NewRequest(name, hopLimit, 0, FlagFullDiscover, []byte{10, 0, 0, 1})
	require.NoError(t, err)

	buf := make([]byte, wire.MaxMsgSize)
	n, err := req.Build(buf, nil)
	require.NoError(t, err)
	buf = buf[:n]

	parsed, err := wire.ParseCcninfo(buf)
	require.NoError(t, err)
	return parsed, buf
}

func TestProcessRequest_NoRouteTerminatesWithReply(t *testing.T) {
	parsed, buf := buildRequestFrame(t, 32)
	lookup := func(wire.Name) ([]uint16, bool) { return nil, false }

	decision, _, err := ProcessRequest(buf, parsed, []byte{192, 168, 0, 1}, lookup, nil)
	require.NoError(t, err)
	assert.False(t, decision.Forward)
	require.NotEmpty(t, decision.Reply)

	reply, err := wire.ParseCcninfo(decision.Reply)
	require.NoError(t, err)
	assert.Equal(t, wire.PTReply, reply.PacketType)
	assert.Equal(t, byte(NoRoute), reply.RetCode)
}

func TestProcessRequest_HopLimitExhaustedTerminates(t *testing.T) {
	parsed, buf := buildRequestFrame(t, 1)
	lookup := func(wire.Name) ([]uint16, bool) { return []uint16{1}, true }

	decision, _, err := ProcessRequest(buf, parsed, []byte{192, 168, 0, 1}, lookup, nil)
	require.NoError(t, err)
	assert.False(t, decision.Forward)

	reply, err := wire.ParseCcninfo(decision.Reply)
	require.NoError(t, err)
	assert.Equal(t, byte(NoInfo), reply.RetCode)
}

func TestProcessRequest_RouteFoundStampsAndForwards(t *testing.T) {
	parsed, buf := buildRequestFrame(t, 32)
	lookup := func(wire.Name) ([]uint16, bool) { return []uint16{3, 4}, true }

	decision, stamped, err := ProcessRequest(buf, parsed, []byte{192, 168, 0, 1}, lookup, nil)
	require.NoError(t, err)
	assert.True(t, decision.Forward)
	assert.Equal(t, []uint16{3, 4}, decision.FaceIDs)
	assert.Greater(t, len(stamped), len(buf))

	restamped, err := wire.ParseCcninfo(stamped)
	require.NoError(t, err)
	assert.Len(t, restamped.Reports, 1)
}
