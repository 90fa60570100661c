package fluentapi

import (
	"sort"
	"sync"
)

// Registry maps endpoint class names to factories, so declarations loaded
// from files can select custom endpoint kinds.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds or replaces the factory for class.
func (r *Registry) Register(class string, factory Factory) error {
	if class == "" {
		return ErrEmptyClassName
	}

	if factory == nil {
		return ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[class] = factory

	return nil
}

// Lookup returns the factory registered for class.
func (r *Registry) Lookup(class string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[class]

	return factory, ok
}

// Classes returns the registered class names in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.factories))
	for class := range r.factories {
		classes = append(classes, class)
	}

	sort.Strings(classes)

	return classes
}
