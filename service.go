package ioservice

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vafo/ioservice/internal/gls"
	"github.com/vafo/ioservice/metrics"
	"github.com/vafo/ioservice/ring"
)

// Service is the proactor-style executor at the center of this module,
// porting original_source/src/io_service.hpp's io_service class: an
// unbounded task queue shared by every worker goroutine that calls Run,
// plus (per spec.md §4.8) a per-worker ring core that each Run loop polls
// between queue waits.
//
// A Service is created stopped-or-fresh via NewService and becomes usable
// the first time a goroutine calls Run; Stop followed by Restart returns it
// to that same usable state, matching the original's restart semantics.
type Service struct {
	cfg   config
	queue atomic.Pointer[TaskQueue]

	interrupt atomic.Pointer[InterruptFlag]

	// workers tracks, for the calling goroutine, whether it is currently
	// inside this Service's Run loop (and if so, its ring core and
	// interrupt handle). It plays the same role callstack plays for
	// strand.can_dispatch()/in_running_handle(), but scoped per Service
	// instance rather than per type.
	workers gls.Store

	ringPool *ring.Registry
}

type workerState struct {
	handle InterruptHandle
	ring   *ring.Core
}

// newService builds a Service from an already-validated config.
func newService(cfg config) *Service {
	s := &Service{
		cfg:      cfg,
		ringPool: ring.GlobalRegistry(),
	}
	s.queue.Store(NewTaskQueue())
	s.interrupt.Store(NewInterruptFlag())
	return s
}

// Post appends fn to the task queue for execution by some future call to
// Run, never the calling goroutine. It ports io_service::post, returning
// ErrServiceStopped instead of enqueueing once the service has been
// Stop()ed and not yet Restart()ed.
func (s *Service) Post(fn func()) error {
	return s.PostTask(NewTask(fn))
}

// PostTask is the Task-typed counterpart of Post, for callers that already
// hold a Task value (e.g. forwarded from a Strand).
func (s *Service) PostTask(t Task) error {
	if s.interrupt.Load().IsStopped() {
		return ErrServiceStopped
	}
	s.queue.Load().Push(t)
	s.cfg.Metrics.Counter("tasks.posted").Add(1)
	return nil
}

// CanDispatch reports whether the calling goroutine is currently inside
// this Service's Run loop. It implements the Executor interface Strand
// depends on.
func (s *Service) CanDispatch() bool {
	_, ok := s.currentWorker()
	return ok
}

// Dispatch runs fn immediately if the calling goroutine is already inside
// Run for this Service, otherwise behaves exactly like Post (including
// failing with ErrServiceStopped once the service is stopped). It ports
// io_service::dispatch.
func (s *Service) Dispatch(fn func()) error {
	if s.CanDispatch() {
		fn()
		return nil
	}
	return s.Post(fn)
}

// RunPendingTask tries to pop and run a single queued task, returning true
// if one ran. On a miss it yields the calling goroutine's timeslice instead
// of spinning. It ports io_service::run_pending_task, which callers waiting
// on a Future from outside a worker loop can call in a loop to help drain
// the queue rather than blocking entirely on the future.
func (s *Service) RunPendingTask() bool {
	t, ok := s.queue.Load().TryPop()
	if !ok {
		runtime.Gosched()
		return false
	}
	s.runTask(t)
	return true
}

// RingCore returns the calling goroutine's ring core, if the calling
// goroutine is currently a worker of s and ring-backed operations are
// enabled (spec.md §4.8). Acceptor/Socket/Resolver in package net use this
// to submit operations against the right per-worker ring.
func (s *Service) RingCore() (*ring.Core, bool) {
	ws, ok := s.currentWorker()
	if !ok || ws.ring == nil {
		return nil, false
	}
	return ws.ring, true
}

func (s *Service) currentWorker() (*workerState, bool) {
	v, ok := s.workers.Get()
	if !ok {
		return nil, false
	}
	return v.(*workerState), true
}

// Run executes tasks on the calling goroutine until Stop is called. Each
// iteration polls the calling goroutine's ring core for completions (if
// ring-backed async operations are enabled and any are pending), then
// either pops a ready task without blocking or, when there is no ring work
// outstanding, blocks until a task arrives or the service stops.
//
// Run returns ErrServiceStopped if the service is already stopped when
// called; otherwise it returns nil once Stop unblocks it.
func (s *Service) Run() error {
	flag := s.interrupt.Load()
	handle, ok := flag.MakeHandle()
	if !ok {
		return ErrServiceStopped
	}
	defer handle.Release()

	var core *ring.Core
	if s.cfg.RingEntries > 0 {
		var err error
		core, err = s.acquireRingCore()
		if err != nil {
			s.cfg.Logger.Warn("ioservice: ring core unavailable, worker falling back to queue-only", "error", err)
		}
	}

	ws := &workerState{handle: handle, ring: core}
	s.workers.Set(ws)
	defer s.workers.Delete()

	active := s.cfg.Metrics.UpDownCounter("workers.active")
	active.Add(1)
	defer active.Add(-1)

	s.cfg.Logger.Debug("ioservice: worker run loop entered")
	defer s.cfg.Logger.Debug("ioservice: worker run loop exited")

	stopped := func() bool { return flag.IsStopped() }
	q := s.queue.Load()

	for {
		if core != nil && core.HasPending() {
			core.PollCompletions()
		}

		if core != nil && core.HasPending() {
			// Ring work outstanding: never block the queue wait, so
			// completions keep draining even with no new tasks posted.
			if t, ok := q.TryPop(); ok {
				s.runTask(t)
				continue
			}
			if stopped() {
				return nil
			}
			runtime.Gosched()
			continue
		}

		t, ok := q.WaitAndPop(stopped)
		if !ok {
			return nil
		}
		s.runTask(t)
	}
}

func (s *Service) runTask(t Task) {
	completed := s.cfg.Metrics.Counter("tasks.completed")
	panicked := s.cfg.Metrics.Counter("tasks.panicked")
	latency := s.cfg.Metrics.Histogram("task.latency.seconds")

	started := time.Now()
	defer func() {
		latency.Record(time.Since(started).Seconds())
		if r := recover(); r != nil {
			panicked.Add(1)
			s.cfg.Logger.Error("ioservice: task panicked", "recovered", r)
			panic(r)
		}
	}()

	t.Run()
	completed.Add(1)
}

// RunWorkers starts n goroutines, each calling Run, and returns a
// WaitGroup callers can use to wait for all of them to exit (after Stop).
// n == 0 resolves to runtime.GOMAXPROCS(0), mirroring how the original's
// example programs spin up a fixed thread count around io_service::run.
func (s *Service) RunWorkers(n int) (*sync.WaitGroup, error) {
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n <= 0 {
		return nil, ErrNoWorkers
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = s.Run()
		}()
	}
	return &wg, nil
}

// Stop signals every worker currently in Run to exit its loop once it next
// observes the stop flag, waits for all of them to release their interrupt
// handles, then discards whatever is left in the task queue. It ports
// io_service::stop, which swaps in a fresh empty queue after wait_all
// returns (original_source/src/io_service.cpp's stop()); once Stop returns,
// Post/Dispatch/PostWaitable already refuse new work (they check
// IsStopped before this queue swap even happens), so nothing can observe
// the queue as non-empty afterward.
func (s *Service) Stop() {
	flag := s.interrupt.Load()
	flag.SignalStop()
	s.queue.Load().Wake()
	flag.WaitAll()
	s.queue.Store(NewTaskQueue())
}

// Restart returns a stopped Service to a runnable state. It ports
// io_service::restart, which is defined in terms of stop() followed by a
// fresh interrupt flag: Restart calls Stop (a no-op if the service is
// already quiesced) before installing the new flag, so a Service that was
// still running when Restart is called is first brought to a full stop,
// draining its queue in the process, rather than being reset out from
// under its active workers.
func (s *Service) Restart() {
	s.Stop()
	s.interrupt.Store(NewInterruptFlag())
}

// PendingTasks returns a point-in-time count of tasks waiting to run. It
// ports the original's task_size() diagnostic accessor.
func (s *Service) PendingTasks() int {
	return s.queue.Load().Len()
}

// Idle reports whether PendingTasks is currently zero. It ports the
// original's empty() diagnostic accessor.
func (s *Service) Idle() bool {
	return s.queue.Load().Empty()
}

func (s *Service) acquireRingCore() (*ring.Core, error) {
	if s.cfg.SharedRingFD >= 0 {
		return s.ringPool.Attach(s.cfg.SharedRingFD)
	}
	core, err := ring.NewCore(s.cfg.RingEntries)
	if err != nil {
		return nil, err
	}
	s.ringPool.Register(core.FD(), core)
	return core, nil
}
