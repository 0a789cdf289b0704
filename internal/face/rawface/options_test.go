package rawface

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cefore-go/cefnetd/internal/config"
)

func TestFromConfig_MapsFields(t *testing.T) {
	cfg := config.RawFaceConfig{
		Enabled:    true,
		Interface:  "eth0",
		SnapLen:    65535,
		BufferSize: 2 << 20,
		TimeoutMS:  100,
		Filter:     "udp port 9896",
		FanoutID:   7,
	}

	opts := FromConfig(cfg)
	assert.Equal(t, "eth0", opts.NetworkInterface)
	assert.Equal(t, 65535, opts.SnapLen)
	assert.Equal(t, 2<<20, opts.BufferSize)
	assert.Equal(t, 100, opts.TimeoutMS)
	assert.Equal(t, "udp port 9896", opts.Filter)
	assert.Equal(t, uint16(7), opts.FanoutID)
}

func TestOptions_ValidateRejectsMissingInterface(t *testing.T) {
	opts := Options{SnapLen: 65535, BufferSize: 2 << 20}
	assert.Error(t, opts.validate())
}

func TestOptions_ValidateRejectsZeroSnapLen(t *testing.T) {
	opts := Options{NetworkInterface: "eth0", BufferSize: 2 << 20}
	assert.Error(t, opts.validate())
}

func TestOptions_ValidateRejectsZeroBufferSize(t *testing.T) {
	opts := Options{NetworkInterface: "eth0", SnapLen: 65535}
	assert.Error(t, opts.validate())
}

func TestOptions_ValidateAcceptsWellFormed(t *testing.T) {
	opts := Options{NetworkInterface: "eth0", SnapLen: 65535, BufferSize: 2 << 20}
	assert.NoError(t, opts.validate())
}
