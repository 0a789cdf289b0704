package decoder

import "github.com/google/gopacket/layers"

// isFragmented reports whether ip4 is one fragment of a larger
// datagram: either more fragments follow, or this one isn't the first.
func isFragmented(ip4 *layers.IPv4) bool {
	return ip4.Flags&layers.IPv4MoreFragments != 0 || ip4.FragOffset != 0
}
