package ring

import (
	"fmt"
	"sync"
)

// Registry is a process-wide map from ring file descriptor to the Core
// that owns it. It is grounded on original_source's
// src/async/detail/scoped_uring.hpp and uring_storage.hpp: a bounded set
// of reusable ring handles guarded by one mutex, letting a second Service
// attach to an existing worker's ring instead of creating its own
// (spec.md §4.8 "Shared work queues").
type Registry struct {
	mu    sync.RWMutex
	cores map[int]*Core
}

var global = &Registry{cores: make(map[int]*Core)}

// GlobalRegistry returns the process-wide Registry instance.
func GlobalRegistry() *Registry {
	return global
}

// Register publishes core under its file descriptor so later Attach calls
// can find it.
func (r *Registry) Register(fd int, core *Core) {
	r.mu.Lock()
	r.cores[fd] = core
	r.mu.Unlock()
}

// Attach returns the Core previously registered under fd.
func (r *Registry) Attach(fd int) (*Core, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	core, ok := r.cores[fd]
	if !ok {
		return nil, fmt.Errorf("ioservice/ring: no ring registered for fd %d", fd)
	}
	return core, nil
}

// Unregister removes fd from the registry. Callers should call this after
// Close()ing the Core previously registered under fd.
func (r *Registry) Unregister(fd int) {
	r.mu.Lock()
	delete(r.cores, fd)
	r.mu.Unlock()
}
