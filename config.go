package ioservice

import (
	"log/slog"

	"github.com/vafo/ioservice/metrics"
)

// config holds Service configuration, mirroring the teacher's config.go in
// shape (an unexported struct assembled by Option functions, with
// defaultConfig centralizing defaults).
type config struct {
	// Logger receives lifecycle, shutdown, and per-operation diagnostic
	// records. Default: slog.Default().
	Logger *slog.Logger

	// RingEntries sizes the submission queue of each worker's ring core
	// (spec.md §4.8). Zero disables ring-backed async operations for this
	// service entirely; Post/Dispatch/Run still work.
	// Default: 256.
	RingEntries uint32

	// SharedRingFD, when non-negative, makes RunWorkers attach new workers
	// to an existing ring file descriptor from the process-wide registry
	// instead of creating one (see ring/registry.go).
	// Default: -1 (create a fresh ring per worker).
	SharedRingFD int

	// Metrics receives counters/histograms for task and worker activity.
	// Default: metrics.NewNoopProvider().
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Logger:       slog.Default(),
		RingEntries:  256,
		SharedRingFD: -1,
		Metrics:      metrics.NewNoopProvider(),
	}
}
