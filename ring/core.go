// Package ring wraps one github.com/pawelgaczynski/giouring.Ring per
// worker goroutine, implementing the "ring core" component spec.md §4.8
// assumes as an external collaborator. It is grounded directly on the
// callbacks/aio.Loop design in other_examples' ianic-xnet aio-loop.go: a
// map from a synthetic "user data" tag to a completion callback, populated
// on submission and drained on each completion-queue poll.
package ring

import (
	"fmt"
	"math"
	"sync"

	"github.com/pawelgaczynski/giouring"
	"github.com/vafo/ioservice/internal/errtag"
)

// CompletionFunc receives the raw completion-queue result for a submitted
// operation: non-negative on success, a negated errno on failure, matching
// the cqe->res convention the kernel uses.
type CompletionFunc func(res int32)

type pendingEntry struct {
	cb        CompletionFunc
	multiShot bool
}

// completionBatchSize bounds how many completion queue events PollCompletions
// drains per call, keeping one worker's poll from starving its own task queue
// checks when a burst of completions arrives at once.
const completionBatchSize = 64

// Core owns one ring and the registry mapping its in-flight submissions to
// completion callbacks.
type Core struct {
	mu        sync.Mutex
	ring      *giouring.Ring
	pending   map[uint64]pendingEntry
	cancelled map[uint64]struct{}
	next      uint64
	fd        int
}

// NewCore creates a ring with the given submission queue depth.
func NewCore(entries uint32) (*Core, error) {
	r, err := giouring.CreateRing(entries)
	if err != nil {
		return nil, fmt.Errorf("ioservice/ring: create ring: %w", err)
	}
	return &Core{
		ring:      r,
		pending:   make(map[uint64]pendingEntry),
		cancelled: make(map[uint64]struct{}),
		next:      math.MaxUint16,
		fd:        int(r.Fd()),
	}, nil
}

// FD returns the ring's file descriptor, used as the key for the
// process-wide Registry (spec.md §4.8 "Shared work queues").
func (c *Core) FD() int {
	return c.fd
}

// Submit stages a submission queue entry via prepare, tags it with a
// unique id, and registers cb to fire once the matching completion arrives.
// cb fires at most once.
func (c *Core) Submit(prepare func(sqe *giouring.SubmissionQueueEntry), cb CompletionFunc) (uint64, error) {
	return c.submit(prepare, cb, false)
}

// SubmitMultiShot behaves like Submit but keeps the pending entry alive
// across repeated completions, removing it only once a completion arrives
// without the kernel's "more completions coming" flag set.
func (c *Core) SubmitMultiShot(prepare func(sqe *giouring.SubmissionQueueEntry), cb CompletionFunc) (uint64, error) {
	return c.submit(prepare, cb, true)
}

func (c *Core) submit(prepare func(sqe *giouring.SubmissionQueueEntry), cb CompletionFunc, multiShot bool) (uint64, error) {
	c.mu.Lock()
	sqe := c.ring.GetSQE()
	if sqe == nil {
		// Submission queue is full: flush what's already staged and retry
		// once before giving up, per get_sqe's contract.
		if _, err := c.ring.SubmitAndWait(0); err != nil {
			c.mu.Unlock()
			return 0, fmt.Errorf("ioservice/ring: submit-and-retry: %w", err)
		}
		sqe = c.ring.GetSQE()
		if sqe == nil {
			c.mu.Unlock()
			return 0, ErrSubmissionQueueFull
		}
	}

	prepare(sqe)
	id := c.next
	c.next++
	sqe.UserData = id
	c.pending[id] = pendingEntry{cb: cb, multiShot: multiShot}
	c.mu.Unlock()

	if _, err := c.ring.SubmitAndWait(0); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return 0, fmt.Errorf("ioservice/ring: submit: %w", err)
	}
	return id, nil
}

// Cancel removes id from the pending registry without submitting a kernel
// cancellation request, recording it as an expected stray so a late
// completion for it is silently dropped by PollCompletions rather than
// treated as a fatal StrayCompletion. Callers that also need to cancel the
// underlying kernel operation should submit an IORING_OP_ASYNC_CANCEL via
// Submit separately.
func (c *Core) Cancel(id uint64) {
	c.mu.Lock()
	if _, ok := c.pending[id]; ok {
		delete(c.pending, id)
		c.cancelled[id] = struct{}{}
	}
	c.mu.Unlock()
}

// HasPending reports whether any submission is still awaiting completion.
func (c *Core) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// PollCompletions drains up to completionBatchSize ready completions,
// invoking each registered callback, and returns how many fired. It never
// blocks.
func (c *Core) PollCompletions() int {
	var cqes [completionBatchSize]*giouring.CompletionQueueEvent

	c.mu.Lock()
	n := c.ring.PeekBatchCQE(cqes[:])
	if n == 0 {
		c.mu.Unlock()
		return 0
	}

	type fire struct {
		cb  CompletionFunc
		res int32
	}
	fires := make([]fire, 0, n)

	for i := uint32(0); i < n; i++ {
		cqe := cqes[i]
		entry, ok := c.pending[cqe.UserData]
		if !ok {
			if _, wasCancelled := c.cancelled[cqe.UserData]; wasCancelled {
				// Expected stray: a completion for an op Cancel already
				// dropped locally (a duplicate multi-shot tail included).
				delete(c.cancelled, cqe.UserData)
				continue
			}
			c.mu.Unlock()
			panic(errtag.Wrap(ErrStrayCompletion, "user_data", cqe.UserData, "res", cqe.Res))
		}
		more := entry.multiShot && cqe.Flags&giouring.CQEFMore != 0
		if !more {
			delete(c.pending, cqe.UserData)
		}
		fires = append(fires, fire{cb: entry.cb, res: cqe.Res})
	}
	c.ring.CQAdvance(n)
	c.mu.Unlock()

	for _, f := range fires {
		f.cb(f.res)
	}
	return len(fires)
}

// Close tears down the underlying ring. It must not be called while any
// other goroutine might still be submitting or polling this Core.
func (c *Core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ring.QueueExit()
}
