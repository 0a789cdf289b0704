package validate

import (
	"hash/crc32"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// crc32Validator computes the CRC-32C (Castagnoli) checksum over the
// signed span, matching the T_CRC32C validation algorithm tag. It
// authenticates against corruption, not against a malicious sender --
// crypto-grade algorithms belong to sha256Validator or a future RSA
// plugin, never to this one.
type crc32Validator struct{}

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

func init() {
	Register("crc32", func() Validator { return crc32Validator{} })
}

func (crc32Validator) AlgID() uint16 { return wire.AlgCRC32C }

func (crc32Validator) Sign(span []byte) ([]byte, error) {
	sum := crc32.Checksum(span, castagnoliTable)
	out := make([]byte, 4)
	out[0] = byte(sum >> 24)
	out[1] = byte(sum >> 16)
	out[2] = byte(sum >> 8)
	out[3] = byte(sum)
	return out, nil
}
