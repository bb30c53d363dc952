package ioservice

import "sync/atomic"

// Task is a type-erased, once-callable unit of work posted to a Service or
// Strand. It plays the role of the original's io_service::invocable
// (original_source/src/io_service.hpp), which erases any callable plus its
// bound arguments behind a single operator() call.
//
// The original's invocable is move-only, so only one owner can ever invoke
// it. Go has no move-only types: a Task value can be copied freely, so
// Run's one-shot guarantee is implemented with a CAS-guarded flag shared by
// every copy of a given Task rather than by the type system.
type Task struct {
	fn  func()
	ran *int32
}

// NewTask wraps fn as a Task.
func NewTask(fn func()) Task {
	ran := new(int32)
	return Task{fn: fn, ran: ran}
}

// IsZero reports whether t is the zero Task (never produced by NewTask).
func (t Task) IsZero() bool {
	return t.fn == nil
}

// Run invokes the wrapped function exactly once across every copy of t,
// reporting whether this call was the one that ran it. Calling Run on a
// zero Task is a no-op that reports false.
func (t Task) Run() (ran bool) {
	if t.IsZero() {
		return false
	}
	if !atomic.CompareAndSwapInt32(t.ran, 0, 1) {
		return false
	}
	t.fn()
	return true
}
