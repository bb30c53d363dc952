// Package callstack ports the intrusive, per-goroutine call stack described
// in original_source/src/callstack.hpp. The original is a templated
// thread_local singly-linked list keyed by a pointer: entering a context
// pushes a (key, value) frame, leaving it pops it, and contains(key) walks
// the stack from the top looking for a matching key. The strand (C10) uses
// one instantiation of this to answer "am I already running inside this
// strand, on this thread?" without any extra bookkeeping in the caller.
//
// Go has no template instantiation, so Marker is a generic type: one Marker
// value plays the role of one callstack<Key, Value> instantiation, and its
// stack is scoped to the calling goroutine via internal/gls.
package callstack

import "github.com/vafo/ioservice/internal/gls"

// Marker is a per-goroutine stack of (key, value) frames. The zero value is
// ready to use.
type Marker[K comparable, V any] struct {
	store gls.Store
}

type frame[K comparable, V any] struct {
	key  K
	val  V
	next *frame[K, V]
}

// Push installs a new top-of-stack frame for the calling goroutine and
// returns a function that pops it. Callers are expected to defer the
// returned function, mirroring the original's context destructor.
func (m *Marker[K, V]) Push(key K, val V) (pop func()) {
	top, _ := m.store.Get()
	f := &frame[K, V]{key: key, val: val}
	if top != nil {
		f.next = top.(*frame[K, V])
	}
	m.store.Set(f)

	return func() {
		if f.next != nil {
			m.store.Set(f.next)
		} else {
			m.store.Delete()
		}
	}
}

// Contains walks the calling goroutine's stack looking for key, returning
// the associated value and true on the first (topmost) match.
func (m *Marker[K, V]) Contains(key K) (V, bool) {
	top, ok := m.store.Get()
	if !ok {
		var zero V
		return zero, false
	}
	for f := top.(*frame[K, V]); f != nil; f = f.next {
		if f.key == key {
			return f.val, true
		}
	}
	var zero V
	return zero, false
}
