// Package gls provides goroutine-local storage.
//
// Go has no language-level thread-local storage, so the pieces of this
// module that are grounded on the original's thread_local call-stack marker
// (see original_source/src/callstack.hpp) and per-worker thread state need a
// substitute keyed by the running goroutine rather than by an explicit
// context value. Store extracts a numeric goroutine ID from runtime.Stack
// and uses it as the map key; this is the same technique used by most
// "goroutine-local storage" shims in the wild and is deliberately limited to
// the handful of operations the ported C++ code actually needs: get, set,
// and delete for the current goroutine only.
package gls

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ID returns an identifier for the calling goroutine. It is stable for the
// lifetime of the goroutine and is not reused until the runtime reuses the
// underlying goroutine ID, which only happens after the goroutine exits.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGoroutineID(buf[:n])
}

// parseGoroutineID extracts the numeric ID from the "goroutine N [state]:"
// header runtime.Stack always writes first.
func parseGoroutineID(stack []byte) uint64 {
	const prefix = "goroutine "
	stack = bytes.TrimPrefix(stack, []byte(prefix))
	idx := bytes.IndexByte(stack, ' ')
	if idx < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(stack[:idx]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Store is a concurrency-safe per-goroutine value store. The zero value is
// ready to use.
type Store struct {
	m sync.Map // uint64 goroutine ID -> any
}

// Get returns the value stored for the calling goroutine, if any.
func (s *Store) Get() (any, bool) {
	return s.m.Load(ID())
}

// Set stores v for the calling goroutine.
func (s *Store) Set(v any) {
	s.m.Store(ID(), v)
}

// Delete removes any value stored for the calling goroutine.
func (s *Store) Delete() {
	s.m.Delete(ID())
}
