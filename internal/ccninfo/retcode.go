// Package ccninfo implements the in-band discovery/trace protocol:
// request construction, on-path stamping, reply generation, and
// client-side reply correlation, on top of the internal/wire codec.
package ccninfo

// RetCode is the Ccninfo return code carried in the fixed header's
// ccninfo_retcode byte, per spec.md §4.3.5.
type RetCode byte

const (
	NoError        RetCode = 0x00
	WrongIF        RetCode = 0x01
	InvalidRequest RetCode = 0x02
	NoRoute        RetCode = 0x03
	NoInfo         RetCode = 0x04
	NoSpace        RetCode = 0x05
	InfoHidden     RetCode = 0x06
	AdminProhib    RetCode = 0x0E
	UnknownRequest RetCode = 0x0F
	FatalError     RetCode = 0x80
)
