package fib

import (
	"encoding/binary"
	"fmt"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// RouteOp is the operation byte of a route message.
type RouteOp byte

const (
	RouteAdd RouteOp = 0
	RouteDel RouteOp = 1
)

// Result bits returned by ApplyRouteMessage, letting upstream modules
// (a PIT cleaner, a route announcer) react to index-shape changes.
const (
	ResultEntryCreated = 0x01
	ResultEntryFreed   = 0x02
)

// RouteMessage is a parsed control-plane route-add/route-del message:
// [op(1), protocol(1), uri_len(2), uri_bytes, (host_len(1), host_bytes)*]
// per spec.md §4.2.4.
type RouteMessage struct {
	Op       RouteOp
	Protocol byte
	URI      string
	Hosts    []string
}

// ParseRouteMessage decodes a RouteMessage from its wire form.
func ParseRouteMessage(buf []byte) (RouteMessage, error) {
	if len(buf) < 4 {
		return RouteMessage{}, ErrTruncated
	}
	op := RouteOp(buf[0])
	protocol := buf[1]
	uriLen := int(binary.BigEndian.Uint16(buf[2:4]))
	off := 4
	if len(buf) < off+uriLen {
		return RouteMessage{}, ErrTruncated
	}
	uri := string(buf[off : off+uriLen])
	off += uriLen

	var hosts []string
	for off < len(buf) {
		hostLen := int(buf[off])
		off++
		if len(buf) < off+hostLen {
			return RouteMessage{}, ErrTruncated
		}
		hosts = append(hosts, string(buf[off:off+hostLen]))
		off += hostLen
	}

	if op != RouteAdd && op != RouteDel {
		return RouteMessage{}, fmt.Errorf("%w: op %d", ErrInvalidArgument, op)
	}
	return RouteMessage{Op: op, Protocol: protocol, URI: uri, Hosts: hosts}, nil
}

// FaceResolver is the external collaborator that turns a (protocol,
// host) pair into a face identifier, creating a face if needed when
// resolving for a RouteAdd.
type FaceResolver interface {
	ResolveFace(protocol byte, host string, create bool) (faceID uint16, err error)
}

// ApplyRouteMessage applies a parsed route message to the table,
// resolving each host to a face via resolver and then adding or
// removing that face from the URI's entry. It returns a bitmask of
// ResultEntryCreated / ResultEntryFreed describing index-shape changes
// across all hosts in the message.
func ApplyRouteMessage(t *Table, resolver FaceResolver, msg RouteMessage) (int, error) {
	name, err := wire.URIToName(msg.URI)
	if err != nil {
		return 0, err
	}
	key := name.Bytes()

	var result int
	switch msg.Op {
	case RouteAdd:
		for _, host := range msg.Hosts {
			faceID, err := resolver.ResolveFace(msg.Protocol, host, true)
			if err != nil {
				return result, err
			}
			_, existed := t.Get(key)
			entry := t.LookupOrCreate(key)
			if !existed {
				result |= ResultEntryCreated
			}
			t.AddFace(entry, faceID, OriginControl)
		}
	case RouteDel:
		entry, ok := t.Get(key)
		if !ok {
			return result, ErrNotRegistered
		}
		for _, host := range msg.Hosts {
			faceID, err := resolver.ResolveFace(msg.Protocol, host, false)
			if err != nil {
				return result, err
			}
			before := entry.empty()
			t.RemoveFace(entry, faceID, OriginControl)
			if !before && entry.empty() {
				result |= ResultEntryFreed
			}
		}
	default:
		return 0, fmt.Errorf("%w: op %d", ErrInvalidArgument, msg.Op)
	}
	return result, nil
}
