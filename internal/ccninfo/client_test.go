package ccninfo

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// fakeConn feeds a fixed sequence of reply packets to Collect, one per
// call to Read, then returns io.EOF-equivalent timeouts forever after.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	replies [][]byte
	next    int
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.replies) {
		return 0, errors.New("timeout")
	}
	reply := c.replies[c.next]
	c.next++
	return copy(p, reply), nil
}

func (c *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func buildReply(t *testing.T, req Request) []byte {
	t.Helper()
	dst := make([]byte, wire.MaxMsgSize)
	n, err := wire.BuildCcninfoReply(dst, wire.CcninfoReplyOptions{
		Name:      req.Name,
		RetCode:   0,
		RequestID: req.RequestID,
		SkipHop:   req.SkipHop,
		Flags:     req.Flags,
		NodeID:    req.NodeID,
	})
	require.NoError(t, err)
	return dst[:n]
}

func TestClient_SendWritesRequest(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)
	req, err := NewRequest(name, 32, 0, FlagFullDiscover, []byte{10, 0, 0, 1})
	require.NoError(t, err)

	conn := &fakeConn{}
	client := NewClient(conn, 0)
	_, err = client.Send(req, nil)
	require.NoError(t, err)

	require.Len(t, conn.written, 1)
	parsed, err := wire.ParseCcninfo(conn.written[0])
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, parsed.RequestID)
}

func TestClient_CollectAccumulatesMatchingReplies(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)
	req, err := NewRequest(name, 32, 0, 0, []byte{10, 0, 0, 1})
	require.NoError(t, err)

	reply := buildReply(t, req)
	conn := &fakeConn{replies: [][]byte{reply, reply}}
	client := NewClient(conn, 50*time.Millisecond)

	handle, err := client.Send(req, nil)
	require.NoError(t, err)

	results := client.Collect(handle, nil)
	assert.GreaterOrEqual(t, len(results), 1)
}

func TestClient_CollectHonorsQuitChannel(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)
	req, err := NewRequest(name, 32, 0, 0, []byte{10, 0, 0, 1})
	require.NoError(t, err)

	conn := &fakeConn{}
	client := NewClient(conn, time.Hour)
	handle, err := client.Send(req, nil)
	require.NoError(t, err)

	quit := make(chan os.Signal, 1)
	quit <- os.Interrupt

	done := make(chan struct{})
	go func() {
		client.Collect(handle, quit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not honor quit channel")
	}
}
