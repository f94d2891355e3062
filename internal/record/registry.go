package record

import (
	"fmt"
	"sync"
)

// Registry stores the record types of one generation session by name.
// Registration happens only through a Synthesizer commit, which is
// all-or-nothing.
type Registry struct {
	// synth is held by a synthesizer from its first name check until its
	// commit, so minted names never race with another synthesizer.
	synth sync.Mutex

	mu    sync.RWMutex
	types map[string]*Type
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names returns registered names in commit order. Within one commit nested
// types precede the types that reference them.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Types returns registered types in commit order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}

// commit registers every pending type or none of them. Names are checked
// again under the write lock so concurrent sessions sharing a registry can
// not both claim a name.
func (r *Registry) commit(pending []*Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range pending {
		if _, ok := r.types[t.name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateTypeName, t.name)
		}
	}
	for _, t := range pending {
		r.types[t.name] = t
		r.order = append(r.order, t.name)
	}
	return nil
}
