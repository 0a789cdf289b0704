// Package decoder strips the Ethernet/IP/UDP envelope off a raw
// captured frame and returns the payload underneath -- a Cefore
// packet, for rawface's purposes -- reassembling IPv4/IPv6 fragments
// first when the payload arrives split across more than one frame.
// Grounded on the teacher's capture-side decoder
// (internal/otus/module/capture/codec/decoder.go): the same
// gopacket.DecodingLayerParser/IgnoreUnsupported setup and per-IP-
// version fragment handling, with the teacher's five-tuple/DPI
// protocol-sniffing layer (HTTP/SIP/RTP/DNS/TLS/... content
// fingerprinting) removed -- a raw face only ever needs the one
// transport it's configured to pick packets off of, not a guess at
// what's inside them.
package decoder

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Frame is the decoded envelope around a UDP payload pulled off the
// wire: who it's from/to, and the payload bytes themselves.
type Frame struct {
	Timestamp time.Time
	SrcIP     net.IP
	DstIP     net.IP
	SrcPort   uint16
	DstPort   uint16
	Payload   []byte
}

// Decoder decodes Ethernet frames down to a UDP payload, reassembling
// IPv4/IPv6 fragments as needed. Not safe for concurrent use -- each
// raw face owns one Decoder on its own read goroutine, consistent with
// the single-writer/one-goroutine-per-face model the daemon uses
// elsewhere.
type Decoder struct {
	parser *gopacket.DecodingLayerParser

	eth     layers.Ethernet
	ip4     layers.IPv4
	ip6     layers.IPv6
	ip6Frag layers.IPv6Fragment
	udp     layers.UDP
	payload gopacket.Payload

	decoded []gopacket.LayerType

	reassembler     *ipv4Reassembler
	ipv6Reassembler *ipv6Reassembler

	stats statistics
}

type statistics struct {
	ipv4Count uint64
	ipv6Count uint64
	udpCount  uint64
	dropped   uint64
}

// NewDecoder returns a Decoder whose fragment reassembly buffers
// expire after fragmentTimeout (30s if zero).
func NewDecoder(fragmentTimeout time.Duration) *Decoder {
	if fragmentTimeout <= 0 {
		fragmentTimeout = 30 * time.Second
	}

	d := &Decoder{
		reassembler:     newIPv4Reassembler(fragmentTimeout),
		ipv6Reassembler: newIPv6Reassembler(fragmentTimeout),
	}
	d.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet,
		&d.eth,
		&d.ip4,
		&d.ip6,
		&d.ip6Frag,
		&d.udp,
		&d.payload,
	)
	d.parser.IgnoreUnsupported = true
	return d
}

// ErrNoUDPPayload means the frame decoded cleanly but carried no UDP
// segment -- not an error in the capture sense, just nothing for a
// Cefore face to hand up.
var ErrNoUDPPayload = fmt.Errorf("decoder: frame has no UDP payload")

// Decode parses one captured frame. It returns ErrNoUDPPayload for
// frames that decode but aren't UDP (ARP, TCP, ICMP, ...), and nil,nil
// for a fragment that was consumed into a still-incomplete reassembly
// buffer.
func (d *Decoder) Decode(data []byte, ci gopacket.CaptureInfo) (*Frame, error) {
	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(data, &d.decoded); err != nil {
		return nil, err
	}

	var srcIP, dstIP net.IP
	gotTransport := false

	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			atomic.AddUint64(&d.stats.ipv4Count, 1)
			if isFragmented(&d.ip4) {
				reassembled, err := d.reassembleIPv4(d.ip4, ci.Timestamp)
				if err != nil {
					atomic.AddUint64(&d.stats.dropped, 1)
					return nil, nil
				}
				if reassembled == nil {
					return nil, nil // still waiting on more fragments
				}
				d.ip4 = *reassembled
				if err := redecodeTransport(d.ip4.Payload, &d.udp, &d.payload); err != nil {
					return nil, err
				}
				gotTransport = true
			}
			srcIP, dstIP = d.ip4.SrcIP, d.ip4.DstIP

		case layers.LayerTypeIPv6:
			atomic.AddUint64(&d.stats.ipv6Count, 1)
			srcIP, dstIP = d.ip6.SrcIP, d.ip6.DstIP

		case layers.LayerTypeIPv6Fragment:
			reassembled, err := d.reassembleIPv6(d.ip6, d.ip6Frag, ci.Timestamp)
			if err != nil {
				atomic.AddUint64(&d.stats.dropped, 1)
				return nil, nil
			}
			if reassembled == nil {
				return nil, nil // still waiting on more fragments
			}
			d.ip6 = *reassembled
			if err := redecodeTransport(d.ip6.Payload, &d.udp, &d.payload); err != nil {
				return nil, err
			}
			gotTransport = true

		case layers.LayerTypeUDP:
			atomic.AddUint64(&d.stats.udpCount, 1)
			gotTransport = true
		}
	}

	if !gotTransport || srcIP == nil {
		return nil, ErrNoUDPPayload
	}

	return &Frame{
		Timestamp: ci.Timestamp,
		SrcIP:     srcIP,
		DstIP:     dstIP,
		SrcPort:   uint16(d.udp.SrcPort),
		DstPort:   uint16(d.udp.DstPort),
		Payload:   append([]byte(nil), d.payload...),
	}, nil
}

// redecodeTransport re-runs UDP decoding against a freshly reassembled
// IP payload, since the original DecodingLayerParser pass only saw one
// fragment's worth of bytes.
func redecodeTransport(payload []byte, udp *layers.UDP, out *gopacket.Payload) error {
	if err := udp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		return err
	}
	*out = gopacket.Payload(udp.Payload)
	return nil
}
