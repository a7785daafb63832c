package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores source adapters by name and supports format detection for
// callers that do not pin a source format up front.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter by its Name(). Duplicate names return an error.
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("schema: adapter is required")
	}
	name := adapter.Name()
	if name == "" {
		return fmt.Errorf("schema: adapter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("schema: adapter %q already registered", name)
	}

	r.adapters[name] = adapter
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(adapter Adapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Get retrieves an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("schema: adapter %q not found", name)
	}
	return adapter, nil
}

// Detect returns the first adapter, in registration order, whose Detect
// accepts the payload.
func (r *Registry) Detect(src Source, raw []byte) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		adapter := r.adapters[name]
		if adapter.Detect(src, raw) {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("schema: no adapter recognised the document")
}

// List returns a sorted list of adapter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
