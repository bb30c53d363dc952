package ioservice

import (
	"sync"
	"sync/atomic"

	"github.com/vafo/ioservice/internal/errtag"
)

// interruptState is the shared control block behind an InterruptFlag and
// every InterruptHandle made from it, porting
// original_source/src/interrupt_flag.hpp's detail::int_state_cb. Where the
// original reference-counts the block with a raw pointer and deletes itself
// at zero owners, Go's garbage collector makes the delete-at-zero path
// unnecessary; what's kept is the owner-count-reaches-one signal that lets
// WaitAll know every worker has released its handle.
type interruptState struct {
	mu       sync.Mutex
	cond     *sync.Cond
	done     bool
	ownerCnt int
	stopCBs  []func()
}

func newInterruptState() *interruptState {
	s := &interruptState{ownerCnt: 1}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// incrOwn adds an owner, refusing once the flag is stopped so a late
// MakeHandle call never re-extends a shutdown that's already underway.
func (s *interruptState) incrOwn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.ownerCnt++
	return true
}

func (s *interruptState) decrOwn() {
	s.mu.Lock()
	s.ownerCnt--
	if s.ownerCnt == 1 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

func (s *interruptState) doWait() {
	s.mu.Lock()
	for s.ownerCnt != 1 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

func (s *interruptState) doStop() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	cbs := append([]func(){}, s.stopCBs...)
	s.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

func (s *interruptState) addStopCB(cb func()) {
	s.mu.Lock()
	s.stopCBs = append(s.stopCBs, cb)
	s.mu.Unlock()
}

func (s *interruptState) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// InterruptFlag is the manager side of the interrupt protocol: it owns the
// shared state, can signal every handle to stop, and can wait for every
// issued handle to be released. It ports interrupt_flag from
// original_source/src/interrupt_flag.hpp.
type InterruptFlag struct {
	state *interruptState
}

// NewInterruptFlag returns a ready-to-use InterruptFlag with one implicit
// owner (the flag itself), mirroring int_state_cb's initial owner count.
func NewInterruptFlag() *InterruptFlag {
	return &InterruptFlag{state: newInterruptState()}
}

// WaitAll blocks until every handle issued by MakeHandle has been Released,
// i.e. until the owner count returns to 1 (the flag's own implicit owner).
func (f *InterruptFlag) WaitAll() {
	f.state.doWait()
}

// SignalStop marks the flag stopped and runs every stop callback
// registered via AddCallbackOnStop, in registration order. It is safe to
// call more than once; only the first call has an effect.
func (f *InterruptFlag) SignalStop() {
	f.state.doStop()
}

// IsStopped reports whether SignalStop has been called.
func (f *InterruptFlag) IsStopped() bool {
	return f.state.isStopped()
}

// MakeHandle issues a new InterruptHandle sharing this flag's state. ok is
// false, and the returned handle is empty, if the flag is already stopped.
func (f *InterruptFlag) MakeHandle() (handle InterruptHandle, ok bool) {
	if !f.state.incrOwn() {
		return InterruptHandle{}, false
	}
	return InterruptHandle{state: f.state, released: new(int32)}, true
}

// Owns reports whether handle was issued by this flag.
func (f *InterruptFlag) Owns(handle InterruptHandle) bool {
	return !handle.IsEmpty() && f.state == handle.state
}

// AddCallbackOnStop registers cb to run when SignalStop is first called. If
// the flag is already stopped, cb is never run by this method; callers that
// need to handle the already-stopped case should check IsStopped first.
func (f *InterruptFlag) AddCallbackOnStop(cb func()) {
	f.state.addStopCB(cb)
}

// InterruptHandle is the worker side of the interrupt protocol: a
// reference a worker goroutine holds on an InterruptFlag's state for as
// long as it might still be running, released exactly once when the
// goroutine is done. It ports interrupt_handle.
//
// The original relies on the handle's destructor to decrement the owner
// count; Go has none, so callers must call Release explicitly (typically
// via defer) when done with a handle.
type InterruptHandle struct {
	state    *interruptState
	released *int32
}

// IsEmpty reports whether h is the zero InterruptHandle (never produced by
// MakeHandle).
func (h InterruptHandle) IsEmpty() bool {
	return h.state == nil
}

// IsStopped reports whether the owning flag has been stopped. An empty
// handle reports true, matching int_state::is_stopped's "no state means
// stopped" convention.
func (h InterruptHandle) IsStopped() bool {
	if h.IsEmpty() {
		return true
	}
	return h.state.isStopped()
}

// Release decrements the owner count, allowing a concurrent WaitAll to
// proceed once every handle has done the same. Releasing an empty handle
// is a no-op. Releasing the same non-empty handle twice panics: the
// original's move-only interrupt_handle makes a double release
// unrepresentable, and a Go caller that manages to do it anyway has a bug
// worth surfacing immediately.
func (h InterruptHandle) Release() {
	if h.IsEmpty() {
		return
	}
	if !atomic.CompareAndSwapInt32(h.released, 0, 1) {
		panic(errtag.Wrap(ErrEmptyHandle, "reason", "handle released more than once"))
	}
	h.state.decrOwn()
}
