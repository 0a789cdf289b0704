package ccninfo

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// Conn is the minimal connection surface the receive loop needs: a
// deadline-aware reader/writer against the local forwarder. *net.UnixConn
// and *net.TCPConn both satisfy it without adaptation.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// DefaultCollectionWindow is the 7-second reply-collection window of
// spec.md §5, used when Client is constructed with window <= 0.
const DefaultCollectionWindow = 7 * time.Second

// pollInterval is the receive loop's sub-second poll interval.
const pollInterval = 200 * time.Millisecond

// Client is the diagnostic CLI's send/receive half: it writes a request
// to the local forwarder and then polls for replies for a bounded
// window, matching each against PendingRequests.
type Client struct {
	conn    Conn
	pending *PendingRequests
	window  time.Duration
}

// NewClient wraps conn with a collection window (DefaultCollectionWindow
// if window <= 0).
func NewClient(conn Conn, window time.Duration) *Client {
	if window <= 0 {
		window = DefaultCollectionWindow
	}
	return &Client{conn: conn, pending: NewPendingRequests(), window: window}
}

// Send builds req's wire form and writes it to the connection, returning
// the local correlation handle for the subsequent Collect call.
func (c *Client) Send(req Request, validator wire.Validator) (uuid.UUID, error) {
	buf := make([]byte, wire.MaxMsgSize)
	n, err := req.Build(buf, validator)
	if err != nil {
		return uuid.UUID{}, err
	}
	if _, err := c.conn.Write(buf[:n]); err != nil {
		return uuid.UUID{}, err
	}
	return c.pending.Register(req, time.Now()), nil
}

// Collect runs the receive loop of spec.md §5: a single nonblocking read
// against the connection with a sub-second poll interval, for up to the
// client's collection window, accumulating every reply that Accept
// matches to handle. quit, if non-nil, is a signal channel (as populated
// by signal.Notify) that the loop polls between reads and which ends
// collection early -- the "signal handler sets a quit flag that the
// receive loop polls" behavior of spec.md §5.
func (c *Client) Collect(handle uuid.UUID, quit <-chan os.Signal) []*Result {
	deadline := time.Now().Add(c.window)
	var results []*Result
	buf := make([]byte, wire.MaxMsgSize)

	for time.Now().Before(deadline) {
		if quit != nil {
			select {
			case <-quit:
				return results
			default:
			}
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return results
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			// read timeout (the expected case every poll interval) or a
			// transient error -- either way keep polling until the window
			// closes.
			continue
		}

		parsed, err := wire.ParseCcninfo(buf[:n])
		if err != nil {
			continue
		}
		if res, ok := c.pending.Accept(parsed, time.Now()); ok {
			results = append(results, res)
		}
	}
	c.pending.Forget(handle)
	return results
}
