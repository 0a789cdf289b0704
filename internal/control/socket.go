// Package control implements the route-add/route-del control-plane
// socket of spec.md §4.2.4/§6: a Unix domain socket carrying
// length-prefixed RouteMessage frames, applied directly to a
// fib.Table. The accept-loop/connection-tracking shape is carried over
// from the teacher's UDS command server, with the JSON-RPC envelope
// replaced by the spec's own binary wire format.
package control

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/cefore-go/cefnetd/internal/fib"
	"github.com/cefore-go/cefnetd/internal/metrics"
)

// maxFrameLen bounds a single RouteMessage's wire length: op(1) +
// protocol(1) + uri_len(2) + uri_bytes + up to 32 hosts of up to 255
// bytes each, well under this ceiling.
const maxFrameLen = 1 << 16

// Status bytes returned after each frame: 0x00 means the message was
// applied, with the ApplyRouteMessage result bitmask following as a
// second byte; 0xFF means rejected, with no second byte -- the
// connection stays open either way, per spec.md §7.
const (
	statusOK       = 0x00
	statusRejected = 0xFF
)

// Server accepts route-message connections and applies each frame to
// table via resolver, per spec.md §4.2.4. A failed frame is rejected
// with a negative status on the connection, which is not closed -- per
// spec.md §7, "control-plane route messages that fail validation are
// rejected with a negative return; the connection is not closed."
type Server struct {
	socketPath string
	table      *fib.Table
	resolver   fib.FaceResolver

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	listener net.Listener
	wg       sync.WaitGroup
	stopped  bool
}

// NewServer builds a control socket server over table, resolving route
// message hosts to faces via resolver.
func NewServer(socketPath string, table *fib.Table, resolver fib.FaceResolver) *Server {
	return &Server{
		socketPath: socketPath,
		table:      table,
		resolver:   resolver,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start opens the Unix domain socket and begins accepting connections.
// It blocks until ctx is cancelled, then stops the server.
func (s *Server) Start(ctx context.Context) error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("control: removing stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("control: listen: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("control: chmod socket: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	<-ctx.Done()
	return s.Stop()
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return
			}
			slog.Error("control: accept failed", "error", err)
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		frame, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("control: connection read error", "error", err)
			}
			return
		}

		msg, err := fib.ParseRouteMessage(frame)
		if err != nil {
			slog.Warn("control: rejecting malformed route message", "error", err)
			metrics.RouteMessagesTotal.WithLabelValues("unknown", "rejected").Inc()
			conn.Write([]byte{statusRejected})
			continue
		}

		result, err := fib.ApplyRouteMessage(s.table, s.resolver, msg)
		if err != nil {
			slog.Warn("control: rejecting route message", "uri", msg.URI, "error", err)
			metrics.RouteMessagesTotal.WithLabelValues(routeOpName(msg.Op), "rejected").Inc()
			conn.Write([]byte{statusRejected})
			continue
		}

		metrics.RouteMessagesTotal.WithLabelValues(routeOpName(msg.Op), "applied").Inc()
		metrics.FIBEntriesTotal.Set(float64(s.table.Len()))
		conn.Write([]byte{statusOK, byte(result)})
	}
}

func routeOpName(op fib.RouteOp) string {
	if op == fib.RouteDel {
		return "del"
	}
	return "add"
}

// readFrame reads one 2-byte-length-prefixed RouteMessage frame.
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if int(n) > maxFrameLen {
		return nil, fmt.Errorf("control: frame length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Stop closes the listener and every open connection. Idempotent.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	os.Remove(s.socketPath)
	return err
}
