package ring

import "errors"

// ErrSubmissionQueueFull is returned by Submit/SubmitMultiShot when the
// ring has no free submission queue entry available even after the
// submit-and-retry in submit().
var ErrSubmissionQueueFull = errors.New("ioservice/ring: submission queue full")

// ErrStrayCompletion is the base of the panic PollCompletions raises when a
// completion arrives for a user-data id this Core never submitted and never
// cancelled. It is a fatal logic error: a well-behaved ring never invents
// ids, so this means the pending registry was corrupted or a ring was
// shared without going through Registry.
var ErrStrayCompletion = errors.New("ioservice/ring: stray completion")
