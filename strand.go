package ioservice

import (
	"sync"

	"github.com/vafo/ioservice/internal/callstack"
)

// Executor is the minimal interface a Strand needs from whatever runs its
// handlers: somewhere to post a follow-up run, and a way to tell whether
// the calling goroutine is already one of its workers. Service implements
// this interface; original_source/src/strand.hpp calls it "Processor".
type Executor interface {
	Post(fn func()) error
	Dispatch(fn func()) error
	CanDispatch() bool
}

// strandMarker tags the calling goroutine's call stack with the Strand
// instances it is currently running a handler for, porting
// callstack<strand>::context from original_source/src/callstack.hpp.
var strandMarker callstack.Marker[*Strand, struct{}]

// Strand serializes handlers posted or dispatched to it so that, no matter
// how many Executor workers call them concurrently, at most one handler
// runs at a time and handlers observe FIFO order relative to each other.
// It ports original_source/src/strand.hpp.
type Strand struct {
	mu        sync.Mutex
	isRunning bool
	queue     []func()
	exec      Executor
}

// NewStrand returns a Strand whose handlers run on exec.
func NewStrand(exec Executor) *Strand {
	return &Strand{exec: exec}
}

// Post enqueues handle to run later, on the Executor, never on the calling
// goroutine. It returns an error, without running handle, if the
// underlying Executor refuses the triggering post (e.g. because its
// Service has been stopped); handle still sits in the strand's own queue
// in that case and will run once some other call to Post or Dispatch
// successfully retriggers the strand.
func (s *Strand) Post(handle func()) error {
	s.mu.Lock()
	s.queue = append(s.queue, handle)
	trigger := !s.isRunning
	if trigger {
		s.isRunning = true
	}
	s.mu.Unlock()

	if trigger {
		if err := s.exec.Post(s.run); err != nil {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return err
		}
	}
	return nil
}

// Dispatch runs handle inline if the calling goroutine is already running
// this Strand's queue (or can enter it immediately with no contention),
// otherwise behaves like Post.
func (s *Strand) Dispatch(handle func()) error {
	if !s.exec.CanDispatch() {
		return s.Post(handle)
	}

	if s.inRunningHandle() {
		handle()
		return nil
	}

	s.mu.Lock()
	var trigger bool
	if s.isRunning {
		s.queue = append(s.queue, handle)
	} else {
		s.isRunning = true
		trigger = true
	}
	s.mu.Unlock()

	if trigger {
		pop := strandMarker.Push(s, struct{}{})
		defer pop()

		handle()
		s.run()
	}
	return nil
}

// run drains the queue, executing handlers one at a time, until it finds
// the queue empty and clears isRunning.
func (s *Strand) run() {
	pop := strandMarker.Push(s, struct{}{})
	defer pop()

	for {
		s.mu.Lock()
		var handle func()
		if len(s.queue) > 0 {
			handle = s.queue[0]
			s.queue = s.queue[1:]
		} else {
			s.isRunning = false
		}
		s.mu.Unlock()

		if handle == nil {
			return
		}
		handle()
	}
}

func (s *Strand) inRunningHandle() bool {
	_, ok := strandMarker.Contains(s)
	return ok
}
