// Package fib implements the Forwarding Information Base: a name-prefix
// keyed table of outbound face sets with longest-prefix lookup, a
// control-plane route-message protocol, and a whitespace-separated
// config-file loader.
package fib

import "errors"

var (
	// ErrNotRegistered is returned by ApplyRouteMessage for a RouteDel
	// whose name has no entry.
	ErrNotRegistered = errors.New("fib: no entry registered for name")
	// ErrInvalidArgument flags a malformed route message or config line.
	ErrInvalidArgument = errors.New("fib: invalid argument")
	// ErrTruncated flags a route message shorter than its own header
	// claims.
	ErrTruncated = errors.New("fib: truncated route message")
)
