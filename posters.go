package ioservice

import (
	"github.com/pawelgaczynski/giouring"
	"github.com/vafo/ioservice/ring"
)

// PostRingOp submits a ring operation prepared by prepare on core and
// returns an AsyncResult that's set, exactly once, with the raw completion
// result code. It is the seam between ring.Core (which cannot import this
// package without creating an import cycle back to itself) and the
// AsyncResult-based protocol the rest of this package exposes, playing the
// role spec.md §4.9's "async posters" play for C7/C8.
func PostRingOp(core *ring.Core, prepare func(sqe *giouring.SubmissionQueueEntry)) (*AsyncResult[int32], error) {
	cell := NewAsyncResult[int32]()
	if _, err := core.Submit(prepare, cell.SetResult); err != nil {
		return nil, err
	}
	return cell, nil
}

// PostRingOpMultiShot behaves like PostRingOp but keeps accepting
// completions after the first: cont is invoked on every completion the
// kernel delivers for the submission, not just the first, until a
// completion arrives without the kernel's "more coming" flag set.
func PostRingOpMultiShot(core *ring.Core, prepare func(sqe *giouring.SubmissionQueueEntry), cont func(res int32)) error {
	_, err := core.SubmitMultiShot(prepare, cont)
	return err
}

// Future represents the eventual result of work posted via PostGeneric,
// Service.PostWaitable, or Service.DispatchWaitable.
type Future[T any] struct {
	cell *AsyncResult[T]
}

// Wait blocks until the future's result is available and returns it.
func (f Future[T]) Wait() T {
	done := make(chan struct{})
	var result T
	f.cell.OnSet(func(v T) {
		result = v
		close(done)
	})
	<-done
	return result
}

// Result exposes the underlying AsyncResult for callers that want to
// register a non-blocking continuation instead of calling Wait.
func (f Future[T]) Result() *AsyncResult[T] {
	return f.cell
}

// PostGeneric dispatches fn on exec, using Dispatch rather than Post per
// spec.md §4.9 (so a caller already on a worker goroutine runs fn inline),
// and returns a Future for its result. It returns ErrServiceStopped,
// without a usable Future, if exec refuses the dispatch because its
// Service is stopped.
func PostGeneric[T any](exec Executor, fn func() T) (Future[T], error) {
	cell := NewAsyncResult[T]()
	if err := exec.Dispatch(func() {
		cell.SetResult(fn())
	}); err != nil {
		return Future[T]{}, err
	}
	return Future[T]{cell: cell}, nil
}

// PostWaitable posts fn to run on some future worker iteration and returns
// a Future that completes once fn returns. It returns ErrServiceStopped,
// without a usable Future, once s has been stopped.
func (s *Service) PostWaitable(fn func()) (Future[struct{}], error) {
	cell := NewAsyncResult[struct{}]()
	if err := s.Post(func() {
		fn()
		cell.SetResult(struct{}{})
	}); err != nil {
		return Future[struct{}]{}, err
	}
	return Future[struct{}]{cell: cell}, nil
}

// DispatchWaitable behaves like PostWaitable but runs fn inline when the
// calling goroutine is already a worker of s.
func (s *Service) DispatchWaitable(fn func()) (Future[struct{}], error) {
	cell := NewAsyncResult[struct{}]()
	if err := s.Dispatch(func() {
		fn()
		cell.SetResult(struct{}{})
	}); err != nil {
		return Future[struct{}]{}, err
	}
	return Future[struct{}]{cell: cell}, nil
}
