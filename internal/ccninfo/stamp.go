package ccninfo

import (
	"errors"
	"time"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// ErrStampOverflow is returned by Stamp when appending another report
// block would exceed the 20-hop limit of spec.md §4.3.2 or would not
// fit in the hop-by-hop region. The caller must respond with a NoSpace
// reply instead of forwarding.
var ErrStampOverflow = errors.New("ccninfo: stamp count would exceed limit")

// NTP32 encodes t as a 32-bit NTP-style timestamp: seconds since an
// epoch offset by 32384, packed into the high 16 bits, and a
// fractional-second field derived from nanoseconds packed into the low
// 16 bits, per spec.md §4.3.2: ((sec+32384)<<16) |
// ((nsec<<7)/1953125).
func NTP32(t time.Time) uint32 {
	sec := uint32(t.Unix()) + 32384
	nsec := uint64(t.Nanosecond())
	frac := uint32((nsec << 7) / 1953125)
	return (sec << 16) | (frac & 0xFFFF)
}

// Stamp appends one report block to buf (the wire form of a Ccninfo
// request in transit) carrying now's NTP-32 encoding and nodeID, per
// spec.md §4.3.2. It returns ErrStampOverflow if the packet already
// carries 20 report blocks (wire.MaxStampNum) or the block would not fit
// in the hop-by-hop region -- the caller must then build a NoSpace reply
// instead of forwarding.
func Stamp(buf []byte, nodeID []byte, now time.Time) ([]byte, error) {
	out, err := wire.AddCcninfoStamp(buf, NTP32(now), nodeID)
	if errors.Is(err, wire.ErrStampOverflow) {
		return nil, ErrStampOverflow
	}
	return out, err
}
