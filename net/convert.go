package net

import (
	"encoding/binary"
	"fmt"
	stdnet "net"
	"net/netip"
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawSockaddr is the (pointer, length) pair giouring's Prepare* calls want
// for operations that take a raw sockaddr, mirroring the sockaddr/socklen_t
// pair original_source/src/async/endpoint.hpp carries directly.
type rawSockaddr struct {
	addr *unix.RawSockaddrAny
	len  uint64
}

// sockaddrToRaw lays out sa as the raw C struct the kernel expects,
// since giouring's io_uring_prep_connect binding takes a raw pointer and
// length rather than golang.org/x/sys/unix's higher-level Sockaddr
// interface.
func sockaddrToRaw(sa unix.Sockaddr) (rawSockaddr, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		raw := &unix.RawSockaddrInet4{Family: unix.AF_INET, Addr: v.Addr}
		binary.BigEndian.PutUint16((*[2]byte)(unsafe.Pointer(&raw.Port))[:], uint16(v.Port))
		return rawSockaddr{addr: (*unix.RawSockaddrAny)(unsafe.Pointer(raw)), len: unix.SizeofSockaddrInet4}, nil
	case *unix.SockaddrInet6:
		raw := &unix.RawSockaddrInet6{Family: unix.AF_INET6, Addr: v.Addr}
		binary.BigEndian.PutUint16((*[2]byte)(unsafe.Pointer(&raw.Port))[:], uint16(v.Port))
		return rawSockaddr{addr: (*unix.RawSockaddrAny)(unsafe.Pointer(raw)), len: unix.SizeofSockaddrInet6}, nil
	default:
		return rawSockaddr{}, fmt.Errorf("ioservice/net: unsupported sockaddr type %T", sa)
	}
}

// netipFromIP converts a legacy net.IP into a netip.Addr, the
// representation Endpoint and the unix.Sockaddr builders use.
func netipFromIP(ip stdnet.IP) (netip.Addr, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return addr, true
}
