package provider

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the closed set of available embedding providers, keyed by
// name. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	embedders map[string]Embedder
}

// NewRegistry creates a registry preloaded with the given embedders.
func NewRegistry(embedders ...Embedder) (*Registry, error) {
	r := &Registry{embedders: make(map[string]Embedder, len(embedders))}
	for _, embedder := range embedders {
		if err := r.Register(embedder); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an embedder. Registering a name twice is an error.
func (r *Registry) Register(embedder Embedder) error {
	if embedder == nil {
		return ErrNilEmbedder
	}
	name := embedder.Name()
	if name == "" {
		return ErrUnnamedEmbedder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.embedders[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEmbedder, name)
	}
	r.embedders[name] = embedder
	return nil
}

// Get returns the embedder registered under name.
func (r *Registry) Get(name string) (Embedder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	embedder, ok := r.embedders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmbedder, name)
	}
	return embedder, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.embedders))
	for name := range r.embedders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
