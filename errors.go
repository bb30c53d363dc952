package ioservice

import "errors"

// Namespace prefixes every sentinel error this package defines, following
// the teacher's errors.go convention.
const Namespace = "ioservice"

var (
	// ErrServiceStopped is returned by Post, PostTask, Dispatch, Run,
	// PostGeneric, PostWaitable, and DispatchWaitable when invoked on a
	// Service that has been Stop()ed and not yet Restart()ed.
	ErrServiceStopped = errors.New(Namespace + ": service is stopped")

	// ErrNoWorkers is returned by RunWorkers when the resolved worker count
	// is not positive: a negative n, or n == 0 with GOMAXPROCS reporting
	// zero (not expected in practice).
	ErrNoWorkers = errors.New(Namespace + ": no workers to run")
)

// Fatal logic errors. These are never returned: they are the base errors a
// worker panics with when it observes a state the type's own API should
// have made unreachable (see spec §7's "fatal to the worker" disposition
// for completion bookkeeping and async-result misuse). Tests and callers
// that want to assert on them use errors.Is against these values; the
// panic value itself is wrapped with structured context via internal/errtag.
var (
	// ErrDoubleSet is the base of the panic raised when AsyncResult.SetResult
	// is called more than once on the same cell.
	ErrDoubleSet = errors.New(Namespace + ": async result already set")

	// ErrUnsetGet is the base of the panic raised when AsyncResult.Value is
	// read before SetResult has ever been called.
	ErrUnsetGet = errors.New(Namespace + ": async result read before it was set")

	// ErrEmptyHandle is the base of the panic raised when the same non-empty
	// InterruptHandle is Released more than once. Releasing a zero-value
	// handle is a no-op and does not panic.
	ErrEmptyHandle = errors.New(Namespace + ": interrupt handle is empty")
)
