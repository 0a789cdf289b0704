package control

import (
	"encoding/binary"
	"fmt"
	"net"
)

// SendRouteMessage dials socketPath, writes frame (the raw
// RouteMessage wire form) length-prefixed, and returns the server's
// status: ok reports whether the message was applied, and result is
// the ApplyRouteMessage bitmask when ok is true.
func SendRouteMessage(socketPath string, frame []byte) (ok bool, result byte, err error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return false, 0, fmt.Errorf("control: dial: %w", err)
	}
	defer conn.Close()

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(frame)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return false, 0, fmt.Errorf("control: write length: %w", err)
	}
	if _, err := conn.Write(frame); err != nil {
		return false, 0, fmt.Errorf("control: write frame: %w", err)
	}

	status := make([]byte, 2)
	n, err := conn.Read(status)
	if err != nil {
		return false, 0, fmt.Errorf("control: read status: %w", err)
	}
	if status[0] == statusRejected {
		return false, 0, nil
	}
	if n < 2 {
		return true, 0, nil
	}
	return true, status[1], nil
}
