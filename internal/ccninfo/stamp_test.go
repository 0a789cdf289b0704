package ccninfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cefore-go/cefnetd/internal/wire"
)

func TestNTP32_Monotonic(t *testing.T) {
	t1 := time.Unix(1_700_000_000, 0)
	t2 := t1.Add(5 * time.Second)
	assert.Less(t, NTP32(t1), NTP32(t2))
}

func TestNTP32_FractionalNanosecondsNoOverflow(t *testing.T) {
	ts := time.Unix(1_700_000_000, 500_000_000)
	got := NTP32(ts) & 0xFFFF
	assert.Equal(t, uint32(32768), got)
}

func TestStamp_OverflowAtLimit(t *testing.T) {
	name, err := wire.URIToName("ccnx:/a")
	require.NoError(t, err)

	dst := make([]byte, wire.MaxMsgSize)
	n, err := wire.BuildCcninfoRequest(dst, wire.CcninfoRequestOptions{
		Name:      name,
		HopLimit:  32,
		RequestID: 0x8080,
		NodeID:    []byte{1, 2, 3, 4},
	})
	require.NoError(t, err)
	buf := dst[:n]

	// A one-byte stamping node ID keeps 20 report blocks (11 bytes each)
	// within the 255 bytes the one-byte hdr_len can express.
	now := time.Unix(1_700_000_000, 0)
	for i := 0; i < wire.MaxStampNum; i++ {
		buf, err = Stamp(buf, []byte{1}, now)
		require.NoError(t, err)
	}

	_, err = Stamp(buf, []byte{1}, now)
	assert.ErrorIs(t, err, ErrStampOverflow)
}
