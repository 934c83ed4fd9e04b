package source

import (
	"context"
	"fmt"
	"sync"

	"modman/internal/domain"
)

// Registry manages available mod sources in registration order
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]Source
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry, replacing one with the same ID
func (r *Registry) Register(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[source.ID()]; !exists {
		r.order = append(r.order, source.ID())
	}
	r.sources[source.ID()] = source
}

// Get retrieves a source by ID
func (r *Registry) Get(id string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("source not found: %s", id)
	}
	return source, nil
}

// List returns all registered sources in registration order
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		sources = append(sources, r.sources[id])
	}
	return sources
}

// Resolve hands rawURL to the first source that matches it
func (r *Registry) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedFile, error) {
	u := NormalizeURL(rawURL)
	for _, s := range r.List() {
		if s.Matches(u) {
			resolved, err := s.Resolve(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name(), err)
			}
			return resolved, nil
		}
	}
	return nil, fmt.Errorf("%w: no source recognizes %q", domain.ErrUnresolvableSource, rawURL)
}
