package face

import (
	"fmt"
	"net"
)

// ListenTCP opens addr and calls onAccept for every inbound connection,
// wrapped as a Face under a freshly assigned ID from reg, until the
// listener is closed. The accept loop runs in a goroutine that ListenTCP
// starts itself, one per configured listen address, per the daemon's
// one-event-loop-per-face model; ListenTCP returns the listener at once.
func ListenTCP(reg *Registry, addr string, onAccept func(Face, net.Conn)) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("face: listen tcp %s: %w", addr, err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			id := reg.Register(func(id uint16) Face {
				return &netFace{id: id, typ: TypeTCP, conn: conn}
			})
			f, _ := reg.Get(id)
			onAccept(f, conn)
		}
	}()
	return ln, nil
}

// ListenUDP opens a single UDP socket on addr and hands every packet to
// onPacket along with its source address, so the caller can resolve or
// create the sending peer's face lazily -- UDP has no accept step, so
// unlike TCP there is one face-identity decision per datagram rather
// than per connection.
func ListenUDP(addr string, onPacket func(data []byte, from net.Addr)) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("face: resolve udp %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("face: listen udp %s: %w", addr, err)
	}

	go func() {
		buf := make([]byte, 1<<16)
		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			onPacket(buf[:n], from)
		}
	}()
	return conn, nil
}
