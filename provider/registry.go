package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/audioscribe/errors"
)

// Registry maps backend names to factories so the backend can be chosen
// from config at runtime.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// RegisterFactory adds or replaces the factory for name.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds the named backend. Unknown names fail with INVALID_INPUT
// listing the registered backends; a nil cfg is passed on as an empty map.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		msg := fmt.Sprintf("backend %q is not registered (available: %s)", name, strings.Join(r.List(), ", "))
		return zero, errors.InvalidInput("backend", msg)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return factory(cfg)
}

func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	_, ok := r.factories[name]
	r.mu.RUnlock()
	return ok
}

// List returns the registered backend names in sorted order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
