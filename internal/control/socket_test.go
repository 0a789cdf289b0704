package control

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/fib"
)

type stubResolver struct {
	next uint16
}

func (r *stubResolver) ResolveFace(protocol byte, host string, create bool) (uint16, error) {
	r.next++
	return r.next, nil
}

func startServer(t *testing.T, table *fib.Table, resolver fib.FaceResolver) (socketPath string, stop func()) {
	t.Helper()
	socketPath = filepath.Join(t.TempDir(), "control.sock")
	srv := NewServer(socketPath, table, resolver)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	return socketPath, func() {
		cancel()
		<-errCh
	}
}

func routeAddFrame(t *testing.T, uri string, hosts ...string) []byte {
	t.Helper()
	buf := []byte{byte(fib.RouteAdd), 0}
	uriBytes := []byte(uri)
	buf = append(buf, byte(len(uriBytes)>>8), byte(len(uriBytes)))
	buf = append(buf, uriBytes...)
	for _, h := range hosts {
		buf = append(buf, byte(len(h)))
		buf = append(buf, h...)
	}
	return buf
}

func TestServer_AppliesRouteAddAndReportsCreated(t *testing.T) {
	table := fib.NewTable()
	resolver := &stubResolver{}
	socketPath, stop := startServer(t, table, resolver)
	defer stop()

	frame := routeAddFrame(t, "ccnx:/a/b", "10.0.0.1:9896")
	ok, result, err := SendRouteMessage(socketPath, frame)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, byte(fib.ResultEntryCreated), result)
	assert.Equal(t, 1, table.Len())
}

func TestServer_RejectsMalformedFrameWithoutClosingConnection(t *testing.T) {
	table := fib.NewTable()
	resolver := &stubResolver{}
	socketPath, stop := startServer(t, table, resolver)
	defer stop()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	// A one-byte frame is too short to be a route message.
	_, err = conn.Write([]byte{0, 1, 0})
	require.NoError(t, err)
	status := make([]byte, 2)
	n, err := conn.Read(status)
	require.NoError(t, err)
	require.Positive(t, n)
	assert.Equal(t, byte(statusRejected), status[0])

	// The same connection still accepts a well-formed frame.
	frame := routeAddFrame(t, "ccnx:/c", "10.0.0.2:9896")
	_, err = conn.Write(append([]byte{byte(len(frame) >> 8), byte(len(frame))}, frame...))
	require.NoError(t, err)
	n, err = conn.Read(status)
	require.NoError(t, err)
	require.Positive(t, n)
	assert.Equal(t, byte(statusOK), status[0])
}

func TestServer_StopRemovesSocketFile(t *testing.T) {
	table := fib.NewTable()
	resolver := &stubResolver{}
	socketPath, stop := startServer(t, table, resolver)
	stop()

	_, err := SendRouteMessage(socketPath, routeAddFrame(t, "ccnx:/a"))
	assert.Error(t, err)
}
