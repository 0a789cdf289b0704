package ccninfo

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// Flag bits for a Ccninfo request, bitwise-combinable per spec.md
// §4.3.1.
const (
	FlagFullDiscover byte = 0x04
	FlagCache        byte = 0x01
	FlagPublisher    byte = 0x02
)

// Request bundles the fields needed to build a wire-form Ccninfo
// request packet.
type Request struct {
	Name      wire.Name
	HopLimit  byte
	SkipHop   byte
	Flags     byte
	RequestID uint16
	NodeID    []byte
}

// NewRequest fills in a Request per spec.md §4.3.1: a random 16-bit
// request_id with both high bits forced to 1 (id |= 0x8080), and the
// local node identifier via detectNodeID if nodeID is nil.
func NewRequest(name wire.Name, hopLimit, skipHop, flags byte, nodeID []byte) (Request, error) {
	if skipHop >= hopLimit {
		return Request{}, fmt.Errorf("%w: skip_hop %d must be less than hop_limit %d", wire.ErrInvalidArgument, skipHop, hopLimit)
	}

	id, err := randomRequestID()
	if err != nil {
		return Request{}, err
	}

	if nodeID == nil {
		nodeID, err = detectNodeID()
		if err != nil {
			return Request{}, err
		}
	}

	return Request{
		Name:      name,
		HopLimit:  hopLimit,
		SkipHop:   skipHop,
		Flags:     flags,
		RequestID: id,
		NodeID:    nodeID,
	}, nil
}

// Build writes the request's wire form into dst via wire.BuildCcninfoRequest.
func (r Request) Build(dst []byte, validator wire.Validator) (int, error) {
	return wire.BuildCcninfoRequest(dst, wire.CcninfoRequestOptions{
		Name:      r.Name,
		HopLimit:  r.HopLimit,
		SkipHop:   r.SkipHop,
		Flags:     r.Flags,
		RequestID: r.RequestID,
		NodeID:    r.NodeID,
		Validator: validator,
	})
}

func randomRequestID() (uint16, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("ccninfo: generate request id: %w", err)
	}
	id := binary.BigEndian.Uint16(b[:])
	id |= 0x8080
	return id, nil
}

// detectNodeID returns this host's node identifier per spec.md §4.3.1:
// the first non-loopback interface's IPv4 address if any, else its
// IPv6 address, else the literal loopback address 127.0.0.1.
func detectNodeID() ([]byte, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.ParseIP("127.0.0.1").To4(), nil
	}

	var v6 net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4, nil
			}
			if v6 == nil && ipNet.IP.To16() != nil {
				v6 = ipNet.IP.To16()
			}
		}
	}
	if v6 != nil {
		return v6, nil
	}
	return net.ParseIP("127.0.0.1").To4(), nil
}
