package fib

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cefore-go/cefnetd/internal/wire"
)

// ProtocolToken maps a config file's protocol column to the protocol
// byte carried in a RouteMessage / passed to FaceResolver.
var ProtocolToken = map[string]byte{
	"tcp": 1,
	"udp": 2,
}

// maxConfigHosts is the K <= 32 bound on a config line's host list, per
// spec.md §4.2.5.
const maxConfigHosts = 32

// LoadConfig reads a route config file per spec.md §4.2.5: one route
// per line, whitespace-tokenized as "<uri> <protocol> <host1> ...
// <hostK>" with K <= 32, "#"-prefixed lines treated as comments. A line
// whose URI fails to parse, whose protocol token is unrecognized, or
// whose host count exceeds the limit is logged and skipped; the rest of
// the file is still processed, per spec.md §4.2.5. Each line is applied
// as a RouteAdd through ApplyRouteMessage, so its faces are tagged
// OriginControl, the same origin as a control-plane route-add; a later
// route-del message removes them like any other control route.
func LoadConfig(r io.Reader, t *Table, resolver FaceResolver) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			slog.Warn("skipping malformed fib config line", "line", lineNo, "reason", "need uri, protocol, and at least one host")
			continue
		}

		uri := fields[0]
		protocolToken := fields[1]
		hosts := fields[2:]
		if len(hosts) > maxConfigHosts {
			slog.Warn("skipping fib config line", "line", lineNo, "reason", "too many hosts", "count", len(hosts), "max", maxConfigHosts)
			continue
		}

		protocol, ok := ProtocolToken[protocolToken]
		if !ok {
			slog.Warn("skipping fib config line", "line", lineNo, "reason", "unknown protocol", "protocol", protocolToken)
			continue
		}

		if _, err := wire.URIToName(uri); err != nil {
			slog.Warn("skipping fib config line", "line", lineNo, "reason", "invalid uri", "uri", uri, "error", err)
			continue
		}

		msg := RouteMessage{Op: RouteAdd, Protocol: protocol, URI: uri, Hosts: hosts}
		if _, err := ApplyRouteMessage(t, resolver, msg); err != nil {
			slog.Warn("skipping fib config line", "line", lineNo, "reason", "route application failed", "uri", uri, "error", err)
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("fib: read config: %w", err)
	}
	return nil
}
