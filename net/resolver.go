package net

import (
	"context"
	"fmt"
	stdnet "net"
	"strconv"

	"github.com/vafo/ioservice"
)

// Resolver resolves host/port pairs into Endpoints, porting
// original_source/src/async/resolver.hpp. The original issues a
// synchronous getaddrinfo(3) call and filters its results down to
// AF_INET/SOCK_STREAM entries; a true io_uring getaddrinfo opcode isn't
// part of the ring surface this module assumes (spec.md §1's "lower-level
// ring library" collaborator), so AsyncResolve instead runs the
// synchronous resolve on a Service worker via ioservice.PostGeneric,
// which is exactly the pattern the original's own async_resolve uses
// (wrapping the synchronous resolve in a generic_async_poster).
type Resolver struct {
	// IncludeIPv6 additionally keeps AF_INET6 results. The original only
	// keeps AF_INET; this is the one place SPEC_FULL supplements that with
	// IPv6 support, off by default to match the original's behavior.
	IncludeIPv6 bool
}

// Resolve performs a synchronous DNS lookup for host and filters the
// results the way the original's resolver::resolve does: numeric
// service/port, stream sockets, and (by default) IPv4 only.
func (r Resolver) Resolve(ctx context.Context, host, port string) ([]Endpoint, error) {
	portNum, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("ioservice/net: invalid port %q: %w", port, err)
	}

	ipAddrs, err := stdnet.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("ioservice/net: resolve %s: %w", host, err)
	}

	eps := make([]Endpoint, 0, len(ipAddrs))
	for _, ip := range ipAddrs {
		addr, ok := netipFromIP(ip.IP)
		if !ok {
			continue
		}
		if addr.Is6() && !addr.Is4In6() && !r.IncludeIPv6 {
			continue
		}
		eps = append(eps, Endpoint{Addr: addr.Unmap(), Port: uint16(portNum)})
	}
	return eps, nil
}

// AsyncResolve runs Resolve on a Service worker and delivers the result
// through cont, exactly once.
func (r Resolver) AsyncResolve(ctx context.Context, svc *ioservice.Service, host, port string, cont func([]Endpoint, error)) {
	type result struct {
		eps []Endpoint
		err error
	}
	fut, err := ioservice.PostGeneric[result](svc, func() result {
		eps, err := r.Resolve(ctx, host, port)
		return result{eps: eps, err: err}
	})
	if err != nil {
		cont(nil, err)
		return
	}
	fut.Result().OnSet(func(res result) {
		cont(res.eps, res.err)
	})
}
