package wire

import "errors"

// Sentinel errors returned by the codec. The codec never logs; callers
// (the forwarder event loop, the CLI) decide whether to log and drop.
var (
	ErrInvalidArgument    = errors.New("wire: invalid argument")
	ErrTruncated          = errors.New("wire: truncated packet")
	ErrEncodeTooLarge     = errors.New("wire: encoded packet exceeds max message size")
	ErrDuplicateSingleton = errors.New("wire: duplicate singleton TLV")
	ErrTopTypeMismatch    = errors.New("wire: unexpected top-level type")
	ErrStampOverflow      = errors.New("wire: ccninfo stamp count would exceed limit")
)
