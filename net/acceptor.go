package net

import (
	"errors"
	"fmt"

	"github.com/pawelgaczynski/giouring"
	"github.com/vafo/ioservice"
	"golang.org/x/sys/unix"
)

// Acceptor owns a listening socket and submits accepts through the
// calling worker's ring core. It ports
// original_source/src/async/acceptor.hpp.
type Acceptor struct {
	svc *ioservice.Service
	fd  int
}

// NewAcceptor creates, binds, and listens on a TCP socket bound to port on
// every local address, mirroring acceptor's constructor plus its
// bind/listen calls (M_socket_setup_accept/M_socket_bind/M_socket_listen
// in the original are left as TODOs; this port fills them in with
// golang.org/x/sys/unix, setting SO_REUSEADDR and SO_REUSEPORT before the
// bind).
func NewAcceptor(svc *ioservice.Service, port uint16, backlog int) (*Acceptor, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("ioservice/net: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ioservice/net: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ioservice/net: setsockopt SO_REUSEPORT: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: int(port)}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ioservice/net: bind: %w", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ioservice/net: listen: %w", err)
	}

	return &Acceptor{svc: svc, fd: fd}, nil
}

// Close closes the listening socket.
func (a *Acceptor) Close() error {
	if a.fd < 0 {
		return nil
	}
	err := unix.Close(a.fd)
	a.fd = -1
	return err
}

// AsyncAccept submits one accept on the calling worker's ring core and
// reports either an error or a new connected Socket through cont, porting
// acceptor::async_accept's detail::async_accept_init/async_accept_comp
// pair: a negative completion result becomes an error, a non-negative one
// becomes the accepted connection's file descriptor.
func (a *Acceptor) AsyncAccept(cont func(*Socket, error)) {
	core, ok := a.svc.RingCore()
	if !ok {
		cont(nil, errors.New("ioservice/net: no ring core available on calling worker"))
		return
	}

	cell, err := ioservice.PostRingOp(core, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareAccept(int32(a.fd), 0, 0, 0)
	})
	if err != nil {
		cont(nil, err)
		return
	}

	cell.OnSet(func(res int32) {
		if res < 0 {
			cont(nil, unix.Errno(-res))
			return
		}
		cont(NewSocket(a.svc, int(res)), nil)
	})
}

// AsyncAcceptMultiShot behaves like AsyncAccept but keeps accepting
// connections, invoking cont once per accepted connection, until the
// calling worker's ring core stops delivering the kernel's "more coming"
// flag for this submission.
func (a *Acceptor) AsyncAcceptMultiShot(cont func(*Socket, error)) error {
	core, ok := a.svc.RingCore()
	if !ok {
		return errors.New("ioservice/net: no ring core available on calling worker")
	}

	return ioservice.PostRingOpMultiShot(core, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareMultishotAccept(int32(a.fd), 0, 0, 0)
	}, func(res int32) {
		if res < 0 {
			cont(nil, unix.Errno(-res))
			return
		}
		cont(NewSocket(a.svc, int(res)), nil)
	})
}
