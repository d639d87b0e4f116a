// Package registry assigns each state type its place in the dependency
// graph. Ranks are computed once, at registration time, and drive the
// traversal order of every transition cycle: a dependency always has a
// strictly lower rank than its dependents.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
)

type entry struct {
	typ  *domain.StateType
	rank int
}

// Registry holds the registered state types and their ranks.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[*domain.StateType]*entry
	byName  map[string]*domain.StateType
	ordered []*domain.StateType // ascending rank, registration order within a tier
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[*domain.StateType]*entry),
		byName:  make(map[string]*domain.StateType),
	}
}

// Register adds a state type and, transitively, every unregistered
// dependency (dependencies first, so their slots always exist before a
// dependent's). Re-registering the same descriptor is a no-op. A dependency
// cycle or a name collision with a different descriptor is an error.
func (r *Registry) Register(st *domain.StateType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(st, make(map[*domain.StateType]bool), nil)
}

// register walks the dependency graph depth-first. visiting carries the
// current path for cycle detection: true means on-path, false means done.
func (r *Registry) register(st *domain.StateType, visiting map[*domain.StateType]bool, path []string) error {
	if st == nil {
		return fmt.Errorf("nil state type")
	}
	if _, ok := r.entries[st]; ok {
		return nil
	}
	if onPath, seen := visiting[st]; seen && onPath {
		cycle := append(append([]string{}, path...), st.Name)
		return &domain.CycleError{Path: trimToCycle(cycle, st.Name)}
	}
	if st.Update == nil {
		return fmt.Errorf("state %q: %w", st.Name, domain.ErrNilUpdate)
	}
	if existing, ok := r.byName[st.Name]; ok && existing != st {
		return fmt.Errorf("state %q: %w", st.Name, domain.ErrStateNameConflict)
	}

	visiting[st] = true
	path = append(path, st.Name)

	rank := 0
	for _, dep := range st.DependsOn {
		if err := r.register(dep, visiting, path); err != nil {
			return err
		}
		if dr := r.entries[dep].rank; dr >= rank {
			rank = dr + 1
		}
	}

	visiting[st] = false

	r.entries[st] = &entry{typ: st, rank: rank}
	r.byName[st.Name] = st
	r.insertOrdered(st, rank)
	return nil
}

// insertOrdered keeps the ordered slice sorted by rank ascending, appending
// within a tier in registration order.
func (r *Registry) insertOrdered(st *domain.StateType, rank int) {
	i := len(r.ordered)
	for i > 0 && r.entries[r.ordered[i-1]].rank > rank {
		i--
	}
	r.ordered = append(r.ordered, nil)
	copy(r.ordered[i+1:], r.ordered[i:])
	r.ordered[i] = st
}

// trimToCycle cuts the recorded path down to the segment starting at the
// first occurrence of the repeated state.
func trimToCycle(path []string, repeated string) []string {
	for i, name := range path {
		if name == repeated {
			return path[i:]
		}
	}
	return path
}

// Rank returns the registration-time rank of a state type.
func (r *Registry) Rank(st *domain.StateType) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[st]
	if !ok {
		return 0, false
	}
	return e.rank, true
}

// Lookup resolves a state type by name.
func (r *Registry) Lookup(name string) (*domain.StateType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.byName[name]
	return st, ok
}

// Ordered returns the registered state types in ascending rank order.
// The returned slice is a copy.
func (r *Registry) Ordered() []*domain.StateType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.StateType, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Closure returns the state type together with its transitive dependencies,
// dependencies first.
func (r *Registry) Closure(st *domain.StateType) []*domain.StateType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.StateType
	seen := make(map[*domain.StateType]bool)
	var walk func(t *domain.StateType)
	walk = func(t *domain.StateType) {
		if seen[t] {
			return
		}
		seen[t] = true
		for _, dep := range t.DependsOn {
			walk(dep)
		}
		out = append(out, t)
	}
	walk(st)
	return out
}

// Contains reports whether the state type is registered.
func (r *Registry) Contains(st *domain.StateType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[st]
	return ok
}

// Len returns the number of registered state types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Info returns introspection records for all registered state types,
// ascending by rank.
func (r *Registry) Info() []domain.StateInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StateInfo, 0, len(r.ordered))
	for _, st := range r.ordered {
		deps := make([]string, 0, len(st.DependsOn))
		for _, dep := range st.DependsOn {
			deps = append(deps, dep.Name)
		}
		out = append(out, domain.StateInfo{
			Name:      st.Name,
			Rank:      r.entries[st].rank,
			DependsOn: deps,
		})
	}
	return out
}
