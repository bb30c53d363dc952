// Package ioservice is a proactor-style asynchronous execution framework:
// one or more goroutines call Service.Run to drain a shared task queue and,
// when ring-backed async operations are enabled, to poll a per-worker
// io_uring ring for completions between queue waits.
//
// Constructors
//   - NewService(opts ...Option): builds a Service from functional options.
//     A freshly built Service does nothing until a goroutine calls Run, or
//     RunWorkers spawns several.
//
// Defaults
// Unless overridden via Option, a Service is built with:
//   - Logger: slog.Default()
//   - RingEntries: 256 (per-worker ring submission queue depth)
//   - SharedRingFD: -1 (create a fresh ring per worker)
//   - Metrics: metrics.NewNoopProvider()
//
// Core pieces
//   - Task: a type-erased, once-callable unit of work.
//   - TaskQueue: the unbounded MPMC queue Service.Post/Dispatch feed and
//     Service.Run drains.
//   - InterruptFlag / InterruptHandle: the stop/wait-for-drain protocol
//     Service.Stop uses to know every worker has exited its loop.
//   - Strand: a mutual-exclusion serializer layered on top of any Executor.
//   - AsyncResult / Future: the one-shot result cell and waitable wrapper
//     behind the async operation protocol; see package ring for the
//     io_uring-backed half of that protocol and package net for the
//     acceptor/socket/resolver wrappers built on it.
//
// This package does not provide synchronous blocking I/O, file I/O beyond
// byte streams, cross-process shared state, or an IOCP backend; it assumes
// a Linux host with io_uring support when ring-backed operations are used.
package ioservice
