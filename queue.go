package ioservice

import "sync"

// TaskQueue is an unbounded, multi-producer multi-consumer FIFO queue of
// Tasks. It ports the two-lock dummy-node queue from
// original_source/src/threadsafe_queue.hpp: a singly-linked list with
// separate head and tail mutexes. A dummy node at the head means Push only
// links a node after the tail and a pop only advances the head; the queue
// is empty exactly when head and tail are the same node. Each side takes
// the other side's lock only briefly: Push to update the length under the
// head lock, a pop to read the tail under the tail lock.
//
// The queue has no maximum size: back-pressure, if any is needed, is the
// caller's responsibility (spec.md §4.2).
type TaskQueue struct {
	headMu sync.Mutex
	tailMu sync.Mutex

	head *queueNode
	tail *queueNode

	length int64 // guarded by headMu for reads taken alongside a pop

	wakeMu sync.Mutex
	wake   chan struct{}
}

type queueNode struct {
	task Task
	next *queueNode
}

// NewTaskQueue returns an empty, ready-to-use TaskQueue.
func NewTaskQueue() *TaskQueue {
	dummy := &queueNode{}
	return &TaskQueue{
		head: dummy,
		tail: dummy,
		wake: make(chan struct{}),
	}
}

// Push appends a task to the tail of the queue and wakes any goroutine
// blocked in WaitAndPop. The original's condition_variable::notify_one
// wakes exactly one waiter; Go's stdlib has no equivalent primitive that
// composes with a plain channel-free mutex design, so Push instead closes
// and replaces a shared "wake" channel, waking every blocked waiter. Each
// waiter re-checks the queue itself on wake, so this is a correctness-
// preserving (if less efficient) approximation of notify_one.
func (q *TaskQueue) Push(t Task) {
	n := &queueNode{task: t}

	q.tailMu.Lock()
	q.tail.next = n
	q.tail = n
	q.tailMu.Unlock()

	q.headMu.Lock()
	q.length++
	q.headMu.Unlock()

	q.broadcast()
}

func (q *TaskQueue) broadcast() {
	q.wakeMu.Lock()
	close(q.wake)
	q.wake = make(chan struct{})
	q.wakeMu.Unlock()
}

// popHead removes and returns the dummy-node successor, if any, leaving a
// new dummy node in its place. Callers must hold headMu.
func (q *TaskQueue) popHead() (Task, bool) {
	if q.head == q.tailSnapshot() {
		return Task{}, false
	}
	old := q.head
	q.head = old.next
	q.length--
	return old.next.task, true
}

// tailSnapshot reads q.tail under tailMu, used by popHead and Empty to
// detect an empty queue. Both call it while holding headMu; Push never
// holds both locks at once, so the headMu-then-tailMu order cannot deadlock.
func (q *TaskQueue) tailSnapshot() *queueNode {
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.tail
}

// TryPop removes and returns the task at the front of the queue, if any,
// without blocking.
func (q *TaskQueue) TryPop() (Task, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.popHead()
}

// WaitAndPop blocks until a task is available or stop reports true,
// returning (zero Task, false) in the latter case. stop is polled after
// every wake, not just once, so a stray wake never causes a missed
// shutdown signal.
func (q *TaskQueue) WaitAndPop(stop func() bool) (Task, bool) {
	for {
		if stop != nil && stop() {
			return Task{}, false
		}

		q.wakeMu.Lock()
		wake := q.wake
		q.wakeMu.Unlock()

		if t, ok := q.TryPop(); ok {
			return t, true
		}

		if stop != nil && stop() {
			return Task{}, false
		}

		<-wake
	}
}

// Empty reports whether the queue currently holds no tasks.
func (q *TaskQueue) Empty() bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head == q.tailSnapshot()
}

// Len returns a point-in-time count of queued tasks. Like the original's
// task_size(), this is a racy snapshot under concurrent use.
func (q *TaskQueue) Len() int {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return int(q.length)
}

// Wake unblocks every goroutine currently parked in WaitAndPop so each can
// re-evaluate its stop predicate. Service.Stop calls this after flipping
// the interrupt flag.
func (q *TaskQueue) Wake() {
	q.broadcast()
}
