// Package rawface implements an optional AF_PACKET-backed face: it
// reads raw Ethernet frames off a network interface, decodes the
// IPv4/IPv6 + UDP envelope gopacket gives us, reassembling IP fragments
// when needed, and hands the UDP payload -- a Cefore packet -- to the
// codec. Grounded on the teacher's capture handle
// (internal/otus/module/capture/handle/handle_afpacket.go): the same
// afpacket.NewTPacket construction, frame/block sizing, optional
// fanout, and optional BPF filter, repurposed from generic packet
// capture to picking one protocol's payload out of the wire.
package rawface

import (
	"fmt"
	"strings"

	"github.com/cefore-go/cefnetd/internal/config"
)

// Options configures a raw face. Built from config.RawFaceConfig rather
// than sharing its mapstructure tags directly, since this package has
// no reason to know about viper.
type Options struct {
	NetworkInterface string
	SnapLen          int
	BufferSize       int
	TimeoutMS        int
	Filter           string
	FanoutID         uint16
}

// FromConfig adapts config.RawFaceConfig into Options.
func FromConfig(cfg config.RawFaceConfig) Options {
	return Options{
		NetworkInterface: cfg.Interface,
		SnapLen:          cfg.SnapLen,
		BufferSize:       cfg.BufferSize,
		TimeoutMS:        cfg.TimeoutMS,
		Filter:           cfg.Filter,
		FanoutID:         uint16(cfg.FanoutID),
	}
}

func (o Options) validate() error {
	if strings.TrimSpace(o.NetworkInterface) == "" {
		return fmt.Errorf("rawface: interface is required")
	}
	if o.SnapLen <= 0 {
		return fmt.Errorf("rawface: snap_len must be positive")
	}
	if o.BufferSize <= 0 {
		return fmt.Errorf("rawface: buffer_size must be positive")
	}
	return nil
}
