package ioservice

import "fmt"

// validateConfig performs lightweight invariant checks on an assembled
// config before it's used to build a Service.
func validateConfig(cfg *config) error {
	if cfg.Logger == nil {
		return fmt.Errorf("%s: logger must not be nil", Namespace)
	}
	if cfg.SharedRingFD < -1 {
		return fmt.Errorf("%s: shared ring fd must be -1 or a valid fd", Namespace)
	}
	if cfg.Metrics == nil {
		return fmt.Errorf("%s: metrics provider must not be nil", Namespace)
	}
	return nil
}
