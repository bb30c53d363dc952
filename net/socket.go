package net

import (
	"errors"
	"fmt"

	"github.com/pawelgaczynski/giouring"
	"github.com/vafo/ioservice"
	"golang.org/x/sys/unix"
)

// Socket owns a connected (or about-to-connect) stream socket file
// descriptor and submits I/O through the calling worker's ring core. It
// ports original_source/src/async/socket.hpp.
type Socket struct {
	svc *ioservice.Service
	fd  int
}

// NewSocket wraps an already-open file descriptor, typically one handed
// back by Acceptor.AsyncAccept.
func NewSocket(svc *ioservice.Service, fd int) *Socket {
	return &Socket{svc: svc, fd: fd}
}

// Close closes the underlying file descriptor. It ports socket's
// destructor, made explicit since Go has no deterministic destructors.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

// FD returns the underlying file descriptor, or -1 if Close has run.
func (s *Socket) FD() int {
	return s.fd
}

// AsyncConnect tries each endpoint in order, short-circuiting on the first
// one that connects successfully, and reports the final result through
// cont. It ports original_source/src/async/async_connect.hpp's
// async_multi_connect_comp, which retries the next endpoint on failure and
// gives up once the list is exhausted.
func (s *Socket) AsyncConnect(endpoints []Endpoint, cont func(err error)) {
	s.tryConnect(endpoints, 0, cont)
}

func (s *Socket) tryConnect(endpoints []Endpoint, idx int, cont func(err error)) {
	if idx >= len(endpoints) {
		cont(fmt.Errorf("ioservice/net: no endpoint connected, tried %d", len(endpoints)))
		return
	}

	core, ok := s.svc.RingCore()
	if !ok {
		cont(errors.New("ioservice/net: no ring core available on calling worker"))
		return
	}

	sa, err := endpoints[idx].sockaddr()
	if err != nil {
		cont(err)
		return
	}

	raw, err := sockaddrToRaw(sa)
	if err != nil {
		cont(err)
		return
	}

	cell, err := ioservice.PostRingOp(core, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareConnect(int32(s.fd), raw.addr, raw.len)
	})
	if err != nil {
		cont(err)
		return
	}

	cell.OnSet(func(res int32) {
		if res == 0 {
			cont(nil)
			return
		}
		s.tryConnect(endpoints, idx+1, cont)
	})
}

// AsyncRead submits a single read of len(buf) bytes and reports the number
// of bytes read through cont, or 0 and the kernel's errno as an error if
// the read failed.
func (s *Socket) AsyncRead(buf []byte, cont func(n int, err error)) {
	core, ok := s.svc.RingCore()
	if !ok {
		cont(0, errors.New("ioservice/net: no ring core available on calling worker"))
		return
	}

	cell, err := ioservice.PostRingOp(core, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareRead(int32(s.fd), buf, 0)
	})
	if err != nil {
		cont(0, err)
		return
	}

	cell.OnSet(func(res int32) {
		cont(resultToN(res))
	})
}

// AsyncWrite submits a single write of buf and reports the number of bytes
// written through cont. If the write fails with EPERM, IsPeerGone reports
// true for the returned error, per spec.md §7's write-after-peer-shutdown
// convention.
func (s *Socket) AsyncWrite(buf []byte, cont func(n int, err error)) {
	core, ok := s.svc.RingCore()
	if !ok {
		cont(0, errors.New("ioservice/net: no ring core available on calling worker"))
		return
	}

	cell, err := ioservice.PostRingOp(core, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareWrite(int32(s.fd), buf, 0)
	})
	if err != nil {
		cont(0, err)
		return
	}

	cell.OnSet(func(res int32) {
		cont(resultToN(res))
	})
}

func resultToN(res int32) (int, error) {
	if res < 0 {
		return 0, unix.Errno(-res)
	}
	return int(res), nil
}

// IsPeerGone reports whether err is the EPERM the kernel returns for a
// write to a connection the peer has already torn down, which this
// module's convention (spec.md §7) treats as a graceful shutdown signal
// rather than a fatal I/O error.
func IsPeerGone(err error) bool {
	return errors.Is(err, unix.EPERM)
}
