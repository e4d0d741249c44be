package sources

import (
	"fmt"
	"sync"
)

// Registry maps source names to their adapters. Callers register one
// adapter per paid source at startup.
type Registry interface {
	Register(source string, adapter Adapter) error
	Get(source string) (Adapter, error)
	ListSources() []string
}

type registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() Registry {
	return &registry{
		adapters: make(map[string]Adapter),
	}
}

func (r *registry) Register(source string, adapter Adapter) error {
	if source == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if adapter == nil {
		return fmt.Errorf("adapter cannot be nil")
	}
	if _, ok := Lookup(source); !ok {
		return fmt.Errorf("source %q is not a known paid operation", source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[source]; exists {
		return fmt.Errorf("source %q is already registered", source)
	}

	r.adapters[source] = adapter
	return nil
}

func (r *registry) Get(source string) (Adapter, error) {
	r.mu.RLock()
	adapter, exists := r.adapters[source]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("source %q is not registered", source)
	}
	return adapter, nil
}

func (r *registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
