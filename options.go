package ioservice

import (
	"fmt"
	"log/slog"

	"github.com/vafo/ioservice/metrics"
)

// Option configures a Service. Use NewService(opts...) to construct one,
// mirroring the teacher's functional-options pattern in options.go.
type Option func(*config)

// WithLogger sets the logger used for lifecycle and diagnostic records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithRingEntries sets the submission queue size of each worker's ring
// core. Passing 0 disables ring-backed async operations for the service.
func WithRingEntries(n uint32) Option {
	return func(c *config) { c.RingEntries = n }
}

// WithSharedRingPool makes RunWorkers attach new workers to the given ring
// file descriptor, previously registered via ring.Registry, instead of
// creating a fresh ring per worker (spec.md §4.8 "Shared work queues").
func WithSharedRingPool(fd int) Option {
	return func(c *config) { c.SharedRingFD = fd }
}

// WithMetrics sets the metrics provider instruments are recorded through.
func WithMetrics(provider metrics.Provider) Option {
	return func(c *config) {
		if provider != nil {
			c.Metrics = provider
		}
	}
}

// NewService builds a Service from functional options, applying
// defaultConfig first.
func NewService(opts ...Option) (*Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic(fmt.Errorf("%s: nil option", Namespace))
		}
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return newService(cfg), nil
}
