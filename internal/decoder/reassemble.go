package decoder

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/gopacket/layers"
)

// IPv4Fragment is one fragment of an IPv4 datagram awaiting reassembly.
type IPv4Fragment struct {
	data      []byte
	offset    uint16
	moreFrags bool
	timestamp time.Time
}

// IPv4ReassemblyKey identifies the fragments belonging to one datagram.
type IPv4ReassemblyKey struct {
	srcIP    string
	dstIP    string
	id       uint16
	protocol layers.IPProtocol
}

// IPv4ReassemblyBuffer holds the fragments collected so far for one key.
type IPv4ReassemblyBuffer struct {
	fragments  []*IPv4Fragment
	totalSize  uint16
	received   map[uint16]bool // offsets already received
	firstSeen  time.Time
	lastUpdate time.Time
}

// ipv4Reassembler tracks in-progress IPv4 fragment reassembly.
type ipv4Reassembler struct {
	buffers map[IPv4ReassemblyKey]*IPv4ReassemblyBuffer
	mu      sync.RWMutex
	timeout time.Duration // fragment buffer expiry
}

func newIPv4Reassembler(timeout time.Duration) *ipv4Reassembler {
	return &ipv4Reassembler{
		buffers: make(map[IPv4ReassemblyKey]*IPv4ReassemblyBuffer),
		timeout: timeout,
	}
}

// reassembleIPv4 folds one more fragment into its datagram's buffer.
// Caller has already confirmed ip4 is fragmented.
func (d *Decoder) reassembleIPv4(ip4 layers.IPv4, timestamp time.Time) (*layers.IPv4, error) {
	key := IPv4ReassemblyKey{
		srcIP:    ip4.SrcIP.String(),
		dstIP:    ip4.DstIP.String(),
		id:       ip4.Id,
		protocol: ip4.Protocol,
	}

	d.reassembler.mu.Lock()
	defer d.reassembler.mu.Unlock()

	d.cleanupExpiredBuffers(timestamp)

	buffer, exists := d.reassembler.buffers[key]
	if !exists {
		buffer = &IPv4ReassemblyBuffer{
			fragments:  make([]*IPv4Fragment, 0),
			received:   make(map[uint16]bool),
			firstSeen:  timestamp,
			lastUpdate: timestamp,
		}
		d.reassembler.buffers[key] = buffer
	}

	if timestamp.Sub(buffer.firstSeen) > d.reassembler.timeout {
		delete(d.reassembler.buffers, key)
		return nil, fmt.Errorf("fragment reassembly timeout")
	}

	fragOffset := ip4.FragOffset * 8 // offset is in 8-byte units on the wire

	if buffer.received[fragOffset] {
		return nil, fmt.Errorf("duplicate fragment at offset %d", fragOffset)
	}

	fragment := &IPv4Fragment{
		data:      ip4.Payload,
		offset:    fragOffset,
		moreFrags: ip4.Flags&layers.IPv4MoreFragments != 0,
		timestamp: timestamp,
	}

	buffer.fragments = append(buffer.fragments, fragment)
	buffer.received[fragOffset] = true
	buffer.lastUpdate = timestamp

	if !fragment.moreFrags {
		buffer.totalSize = fragOffset + uint16(len(fragment.data))
	}

	if buffer.totalSize > 0 && d.isReassemblyComplete(buffer) {
		reassembled, err := d.assembleFragments(buffer, &ip4)
		if err != nil {
			delete(d.reassembler.buffers, key)
			return nil, err
		}

		delete(d.reassembler.buffers, key)
		return reassembled, nil
	}

	return nil, nil // still waiting on more fragments
}

// isReassemblyComplete reports whether every offset up to totalSize has
// been received.
func (d *Decoder) isReassemblyComplete(buffer *IPv4ReassemblyBuffer) bool {
	if buffer.totalSize == 0 {
		return false
	}

	var offset uint16
	for offset < buffer.totalSize {
		if !buffer.received[offset] {
			return false
		}
		advanced := false
		for _, frag := range buffer.fragments {
			if frag.offset == offset && len(frag.data) > 0 {
				offset += uint16(len(frag.data))
				advanced = true
				break
			}
		}
		if !advanced {
			return false
		}
	}

	return true
}

// assembleFragments concatenates buffer's fragments into one IPv4 packet.
func (d *Decoder) assembleFragments(buffer *IPv4ReassemblyBuffer, template *layers.IPv4) (*layers.IPv4, error) {
	payload := make([]byte, buffer.totalSize)

	for _, frag := range buffer.fragments {
		if frag.offset+uint16(len(frag.data)) > buffer.totalSize {
			return nil, fmt.Errorf("fragment overflow: offset=%d, len=%d, total=%d",
				frag.offset, len(frag.data), buffer.totalSize)
		}
		copy(payload[frag.offset:], frag.data)
	}

	reassembled := &layers.IPv4{
		Version:    template.Version,
		IHL:        template.IHL,
		TOS:        template.TOS,
		Length:     uint16(20 + len(payload)), // IPv4 header + payload
		Id:         template.Id,
		Flags:      0, // fragment flags cleared on the reassembled packet
		FragOffset: 0,
		TTL:        template.TTL,
		Protocol:   template.Protocol,
		Checksum:   0, // recomputed downstream if needed
		SrcIP:      template.SrcIP,
		DstIP:      template.DstIP,
		Options:    template.Options,
		Padding:    template.Padding,
	}
	reassembled.Payload = payload

	return reassembled, nil
}

// cleanupExpiredBuffers drops reassembly buffers older than the timeout.
func (d *Decoder) cleanupExpiredBuffers(now time.Time) {
	expiredKeys := make([]IPv4ReassemblyKey, 0)

	for key, buffer := range d.reassembler.buffers {
		if now.Sub(buffer.firstSeen) > d.reassembler.timeout {
			expiredKeys = append(expiredKeys, key)
		}
	}

	for _, key := range expiredKeys {
		delete(d.reassembler.buffers, key)
	}
}

// IPv6Fragment is one fragment of an IPv6 datagram awaiting reassembly.
type IPv6Fragment struct {
	data      []byte
	offset    uint16
	moreFrags bool
	timestamp time.Time
}

// IPv6ReassemblyKey identifies the fragments belonging to one datagram.
type IPv6ReassemblyKey struct {
	srcIP          string
	dstIP          string
	identification uint32 // IPv6 fragment header carries a 32-bit ID
}

// IPv6ReassemblyBuffer holds the fragments collected so far for one key.
type IPv6ReassemblyBuffer struct {
	fragments  []*IPv6Fragment
	totalSize  uint16
	received   map[uint16]bool
	nextHeader uint8 // protocol following the fragment header
	firstSeen  time.Time
	lastUpdate time.Time
}

// ipv6Reassembler tracks in-progress IPv6 fragment reassembly.
type ipv6Reassembler struct {
	buffers map[IPv6ReassemblyKey]*IPv6ReassemblyBuffer
	mu      sync.RWMutex
	timeout time.Duration
}

func newIPv6Reassembler(timeout time.Duration) *ipv6Reassembler {
	return &ipv6Reassembler{
		buffers: make(map[IPv6ReassemblyKey]*IPv6ReassemblyBuffer),
		timeout: timeout,
	}
}

// reassembleIPv6 folds one more fragment into its datagram's buffer.
// Caller has already confirmed a fragment extension header was present.
func (d *Decoder) reassembleIPv6(ip6 layers.IPv6, frag layers.IPv6Fragment, timestamp time.Time) (*layers.IPv6, error) {
	key := IPv6ReassemblyKey{
		srcIP:          ip6.SrcIP.String(),
		dstIP:          ip6.DstIP.String(),
		identification: frag.Identification,
	}

	d.ipv6Reassembler.mu.Lock()
	defer d.ipv6Reassembler.mu.Unlock()

	d.cleanupExpiredIPv6Buffers(timestamp)

	buffer, exists := d.ipv6Reassembler.buffers[key]
	if !exists {
		buffer = &IPv6ReassemblyBuffer{
			fragments:  make([]*IPv6Fragment, 0),
			received:   make(map[uint16]bool),
			nextHeader: uint8(frag.NextHeader),
			firstSeen:  timestamp,
			lastUpdate: timestamp,
		}
		d.ipv6Reassembler.buffers[key] = buffer
	}

	if timestamp.Sub(buffer.firstSeen) > d.ipv6Reassembler.timeout {
		delete(d.ipv6Reassembler.buffers, key)
		return nil, nil // expired, treated as incomplete rather than an error
	}

	// gopacket splits the header field: FragmentOffset holds the 13-bit
	// offset, MoreFragments the M flag.
	fragOffset := frag.FragmentOffset * 8 // offset is in 8-byte units on the wire
	moreFrags := frag.MoreFragments

	if buffer.received[fragOffset] {
		return nil, nil // duplicate fragment, nothing new to do
	}

	fragment := &IPv6Fragment{
		data:      frag.Payload,
		offset:    fragOffset,
		moreFrags: moreFrags,
		timestamp: timestamp,
	}

	buffer.fragments = append(buffer.fragments, fragment)
	buffer.received[fragOffset] = true
	buffer.lastUpdate = timestamp

	if !fragment.moreFrags {
		buffer.totalSize = fragOffset + uint16(len(fragment.data))
	}

	if buffer.totalSize > 0 && d.isIPv6ReassemblyComplete(buffer) {
		reassembled, err := d.assembleIPv6Fragments(buffer, &ip6)
		if err != nil {
			delete(d.ipv6Reassembler.buffers, key)
			return nil, nil // assembly failed, treated as incomplete
		}

		delete(d.ipv6Reassembler.buffers, key)
		return reassembled, nil
	}

	return nil, nil
}

// isIPv6ReassemblyComplete reports whether every offset up to totalSize
// has been received.
func (d *Decoder) isIPv6ReassemblyComplete(buffer *IPv6ReassemblyBuffer) bool {
	if buffer.totalSize == 0 {
		return false
	}

	var offset uint16
	for offset < buffer.totalSize {
		if !buffer.received[offset] {
			return false
		}
		advanced := false
		for _, frag := range buffer.fragments {
			if frag.offset == offset && len(frag.data) > 0 {
				offset += uint16(len(frag.data))
				advanced = true
				break
			}
		}
		if !advanced {
			return false
		}
	}

	return true
}

// assembleIPv6Fragments concatenates buffer's fragments into one IPv6 packet.
func (d *Decoder) assembleIPv6Fragments(buffer *IPv6ReassemblyBuffer, template *layers.IPv6) (*layers.IPv6, error) {
	payload := make([]byte, buffer.totalSize)

	for _, frag := range buffer.fragments {
		if frag.offset+uint16(len(frag.data)) > buffer.totalSize {
			return nil, fmt.Errorf("IPv6 fragment overflow: offset=%d, len=%d, total=%d",
				frag.offset, len(frag.data), buffer.totalSize)
		}
		copy(payload[frag.offset:], frag.data)
	}

	reassembled := &layers.IPv6{
		Version:      template.Version,
		TrafficClass: template.TrafficClass,
		FlowLabel:    template.FlowLabel,
		Length:       uint16(len(payload)), // IPv6 Length excludes the base header
		NextHeader:   layers.IPProtocol(buffer.nextHeader),
		HopLimit:     template.HopLimit,
		SrcIP:        template.SrcIP,
		DstIP:        template.DstIP,
	}
	reassembled.Payload = payload

	return reassembled, nil
}

// cleanupExpiredIPv6Buffers drops reassembly buffers older than the timeout.
func (d *Decoder) cleanupExpiredIPv6Buffers(now time.Time) {
	expiredKeys := make([]IPv6ReassemblyKey, 0)

	for key, buffer := range d.ipv6Reassembler.buffers {
		if now.Sub(buffer.firstSeen) > d.ipv6Reassembler.timeout {
			expiredKeys = append(expiredKeys, key)
		}
	}

	for _, key := range expiredKeys {
		delete(d.ipv6Reassembler.buffers, key)
	}
}
