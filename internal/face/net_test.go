package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/fib"
)

func TestNetworkFor_TCP(t *testing.T) {
	network, typ, err := networkFor(fib.ProtocolToken["tcp"])
	require.NoError(t, err)
	assert.Equal(t, "tcp", network)
	assert.Equal(t, TypeTCP, typ)
}

func TestNetworkFor_UDP(t *testing.T) {
	network, typ, err := networkFor(fib.ProtocolToken["udp"])
	require.NoError(t, err)
	assert.Equal(t, "udp", network)
	assert.Equal(t, TypeUDP, typ)
}

func TestNetworkFor_UnknownProtocol(t *testing.T) {
	_, _, err := networkFor(99)
	assert.Error(t, err)
}

func TestNetDialer_UnreachableHostReturnsError(t *testing.T) {
	dial := NetDialer()
	_, err := dial(1, fib.ProtocolToken["tcp"], "127.0.0.1:1")
	assert.Error(t, err)
}
