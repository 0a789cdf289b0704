// Package face implements the link-layer abstraction the daemon
// forwards Cefore packets over: dialed TCP/UDP connections and an
// optional AF_PACKET-backed raw face (see the rawface subpackage).
// Beyond an integer identity and a type query, what a face IS -- a
// socket, a capture handle, a test double -- is this package's concern
// alone; the codec and the FIB never see anything but a faceID.
package face

import "errors"

// ErrNotFound is returned by Registry.ResolveFace when create is false
// and no face is registered for the given protocol/host pair.
var ErrNotFound = errors.New("face: no face registered for protocol/host")

// Type identifies the kind of link a Face rides on.
type Type byte

const (
	TypeTCP Type = iota
	TypeUDP
	TypeRaw
)

func (t Type) String() string {
	switch t {
	case TypeTCP:
		return "tcp"
	case TypeUDP:
		return "udp"
	case TypeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Face is the minimal shape the FIB and the daemon's forwarding loop
// need: a stable identifier, a type tag, and a way to push bytes out
// and tear the link down. Reading is face-type-specific (a net.Conn
// read loop, an AF_PACKET ReadPacketData loop) and lives outside this
// interface -- each face's owning goroutine reads it directly.
type Face interface {
	ID() uint16
	Type() Type
	Send(msg []byte) error
	Close() error
}
