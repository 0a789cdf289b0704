package rawface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFrameSizeAndBlocks_TypicalSnapLen(t *testing.T) {
	frameSize, blockSize, numBlocks, err := computeFrameSizeAndBlocks(65535, 16<<20)
	require.NoError(t, err)
	assert.Positive(t, frameSize)
	assert.Equal(t, frameSize*128, blockSize)
	assert.Positive(t, numBlocks)
}

func TestComputeFrameSizeAndBlocks_BufferTooSmall(t *testing.T) {
	_, _, _, err := computeFrameSizeAndBlocks(65535, 1024)
	assert.Error(t, err)
}

func TestNew_ReturnsUnopenedFace(t *testing.T) {
	f := New(3, Options{NetworkInterface: "eth0", SnapLen: 65535, BufferSize: 2 << 20})
	assert.Equal(t, uint16(3), f.ID())
	assert.Equal(t, "raw", f.Type().String())
}
