// Package net provides the external wrappers spec.md §4.11 calls for:
// Acceptor, Socket, and Resolver, layered on top of ioservice.Service and
// ring.Core. It ports original_source/src/async/acceptor.hpp, socket.hpp,
// resolver.hpp, endpoint.hpp, and async_connect.hpp, using
// golang.org/x/sys/unix where the original reaches for raw socket(2)/
// bind(2)/listen(2)/getaddrinfo(3) calls.
package net

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

// Endpoint is an IPv4 or IPv6 socket address, the Go-native counterpart of
// the original's endpoint (a raw sockaddr + length pair). It ports
// original_source/src/async/endpoint.hpp.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

// String renders the endpoint as "host:port".
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

// sockaddr converts e into the unix.Sockaddr golang.org/x/sys/unix expects
// for bind/connect.
func (e Endpoint) sockaddr() (unix.Sockaddr, error) {
	if e.Addr.Is4() {
		return &unix.SockaddrInet4{Port: int(e.Port), Addr: e.Addr.As4()}, nil
	}
	if e.Addr.Is6() {
		return &unix.SockaddrInet6{Port: int(e.Port), Addr: e.Addr.As16()}, nil
	}
	return nil, fmt.Errorf("ioservice/net: endpoint %s has no valid address family", e)
}
