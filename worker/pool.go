package worker

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentforge/core"
)

// Pool is the name-keyed registry of live worker handles. It enforces name
// uniqueness and is safe for concurrent use.
type Pool struct {
	mu      sync.RWMutex
	workers map[string]*Handle
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{workers: make(map[string]*Handle)}
}

// Register adds a handle to the pool. A name collision returns
// *core.DuplicateNameError and leaves the pool unchanged.
func (p *Pool) Register(handle *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := handle.Name()
	if _, exists := p.workers[name]; exists {
		return &core.DuplicateNameError{Name: name}
	}
	p.workers[name] = handle
	return nil
}

// Get returns the handle registered under name, if any.
func (p *Pool) Get(name string) (*Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	handle, ok := p.workers[name]
	return handle, ok
}

// Remove deletes the handle registered under name and reports whether it
// was present.
func (p *Pool) Remove(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.workers[name]; !ok {
		return false
	}
	delete(p.workers, name)
	return true
}

// Len returns the number of registered handles.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

// Names returns the registered worker names in sorted order.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.workers))
	for name := range p.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handles returns a snapshot of all registered handles in name order.
func (p *Pool) Handles() []*Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.workers))
	for name := range p.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	handles := make([]*Handle, len(names))
	for i, name := range names {
		handles[i] = p.workers[name]
	}
	return handles
}

// TotalInteractions sums the interaction log sizes across the pool.
func (p *Pool) TotalInteractions() int {
	total := 0
	for _, handle := range p.Handles() {
		total += handle.InteractionCount()
	}
	return total
}

// DistinctArchetypes counts the different archetypes present in the pool.
func (p *Pool) DistinctArchetypes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[core.Archetype]struct{}, len(p.workers))
	for _, handle := range p.workers {
		seen[handle.Archetype()] = struct{}{}
	}
	return len(seen)
}

// CapabilitiesByWorker returns each worker's declared capability set, keyed
// by name. Used by discovery to compute gaps.
func (p *Pool) CapabilitiesByWorker() map[string][]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string][]string, len(p.workers))
	for name, handle := range p.workers {
		caps := make([]string, len(handle.spec.Capabilities))
		copy(caps, handle.spec.Capabilities)
		out[name] = caps
	}
	return out
}
