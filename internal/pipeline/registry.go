package pipeline

import (
	"fmt"
	"sync"
)

// Pipeline is a named, ordered, immutable chain of handlers.
type Pipeline struct {
	name        string
	description string
	handlers    []Handler
}

// NewPipeline builds a pipeline from its handlers. The handler slice is
// copied; a pipeline never changes after construction.
func NewPipeline(name, description string, handlers ...Handler) *Pipeline {
	return &Pipeline{
		name:        name,
		description: description,
		handlers:    append([]Handler(nil), handlers...),
	}
}

// Name returns the registry key the pipeline is resolved by.
func (p *Pipeline) Name() string { return p.name }

// Description returns the human-readable summary.
func (p *Pipeline) Description() string { return p.description }

// Handlers returns the chain in declared order.
func (p *Pipeline) Handlers() []Handler {
	return append([]Handler(nil), p.handlers...)
}

// Registry resolves pipeline names at process time. It is passed explicitly
// to the engine rather than living as a hidden global.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[string]*Pipeline)}
}

// Register adds or replaces a pipeline under its name.
func (r *Registry) Register(p *Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[p.Name()] = p
}

// Get resolves a pipeline by name.
func (r *Registry) Get(name string) (*Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline: no pipeline named %q", name)
	}
	return p, nil
}

// Names returns the registered pipeline names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		out = append(out, name)
	}
	return out
}
