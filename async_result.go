package ioservice

import (
	"fmt"
	"sync"

	"github.com/vafo/ioservice/internal/errtag"
)

// AsyncResult is the one-shot result cell behind the async operation
// protocol (spec.md §4.6, §4.7): an operation's completer calls SetResult
// exactly once, and whichever continuation is registered via OnSet runs
// immediately afterward, inline, on whichever goroutine made that call.
// It ports the newer, non-namespaced async_result<T> in
// original_source/src/async/async_result.hpp, generalized with Go
// generics in place of the original's template parameter.
type AsyncResult[T any] struct {
	mu    sync.Mutex
	isSet bool
	value T
	cont  func(T)
}

// NewAsyncResult returns an empty, ready-to-use AsyncResult.
func NewAsyncResult[T any]() *AsyncResult[T] {
	return &AsyncResult[T]{}
}

// OnSet registers cont to run exactly once: immediately, synchronously, if
// the result is already set, or later, from inside SetResult, otherwise.
// Registering a second continuation replaces the first; callers that need
// multiple observers should compose their own fan-out continuation.
func (r *AsyncResult[T]) OnSet(cont func(T)) {
	r.mu.Lock()
	if r.isSet {
		v := r.value
		r.mu.Unlock()
		cont(v)
		return
	}
	r.cont = cont
	r.mu.Unlock()
}

// SetResult stores value and invokes the registered continuation, if any.
// Calling SetResult more than once panics: the initiator/completer split
// that produces an AsyncResult guarantees exactly one completer per
// operation, so a second call means the operation implementation itself is
// broken, not something a caller can meaningfully recover from (spec §7).
func (r *AsyncResult[T]) SetResult(value T) {
	r.mu.Lock()
	if r.isSet {
		r.mu.Unlock()
		panic(errtag.Wrap(ErrDoubleSet, "type", fmt.Sprintf("%T", value)))
	}
	r.isSet = true
	r.value = value
	cont := r.cont
	r.mu.Unlock()

	if cont != nil {
		cont(value)
	}
}

// Value returns the stored result, panicking if SetResult has not yet been
// called. Prefer OnSet for normal use; Value exists for callers that have
// independently confirmed IsSet.
func (r *AsyncResult[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isSet {
		var zero T
		panic(errtag.Wrap(ErrUnsetGet, "type", fmt.Sprintf("%T", zero)))
	}
	return r.value
}

// IsSet reports whether SetResult has been called.
func (r *AsyncResult[T]) IsSet() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isSet
}
