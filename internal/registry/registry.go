package registry

import (
	"sort"
	"sync"
)

// Module is the interface that all parser modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered constructors and loaded definitions for a
// single application instance. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	handlers    map[string]*RegisteredParser
	definitions map[string]*Definition
}

// New creates and initializes a new Registry instance, registering the
// given modules.
func New(modules ...Module) *Registry {
	r := &Registry{
		handlers:    make(map[string]*RegisteredParser),
		definitions: make(map[string]*Definition),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Handler returns the constructor registered under name.
func (r *Registry) Handler(name string) (*RegisteredParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// HandlerNames returns every registered constructor name, sorted.
func (r *Registry) HandlerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Define stores a loaded definition under key. If another goroutine defined
// the same key first, that definition is kept and returned.
func (r *Registry) Define(key string, def *Definition) *Definition {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.definitions[key]; ok {
		return existing
	}
	r.definitions[key] = def
	return def
}

// Definition returns the definition stored under key, if any.
func (r *Registry) Definition(key string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[key]
	return def, ok
}

// DefinitionCount returns how many manifests have been loaded.
func (r *Registry) DefinitionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}
