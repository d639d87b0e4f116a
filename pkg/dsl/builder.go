// Package dsl provides a fluent builder API for defining state types in Go
// code, covering the common shapes: externally driven roots, guarded
// sub-states and purely derived states.
package dsl

import (
	"github.com/aretw0/cascade/pkg/domain"
)

// RootBuilder constructs a rank-zero state type driven purely by staged
// targets.
type RootBuilder struct {
	name   string
	toggle bool
}

// Root starts a builder for a dependency-free state type. Its value changes
// only through SetTarget or QueueTarget.
func Root(name string) *RootBuilder {
	return &RootBuilder{name: name}
}

// Toggleable switches the root to a toggle target, so callers can also stage
// a disable (a nil value) instead of only replacements.
func (b *RootBuilder) Toggleable() *RootBuilder {
	b.toggle = true
	return b
}

// Build compiles the descriptor.
func (b *RootBuilder) Build() *domain.StateType {
	if b.toggle {
		return &domain.StateType{
			Name:      b.name,
			NewTarget: domain.NewToggleTarget,
			Update: func(slot *domain.Slot, _ domain.Dependencies) domain.Decision {
				t := slot.Target().(*domain.ToggleTarget)
				if !t.ShouldUpdate() {
					return domain.Unchanged()
				}
				// A staged nil value means disable.
				return domain.Enable(t.Value())
			},
		}
	}
	return &domain.StateType{
		Name:      b.name,
		NewTarget: domain.NewReplaceTarget,
		Update: func(slot *domain.Slot, _ domain.Dependencies) domain.Decision {
			t := slot.Target().(*domain.ReplaceTarget)
			if !t.ShouldUpdate() {
				return domain.Unchanged()
			}
			return domain.Enable(t.Value())
		},
	}
}

// SubBuilder constructs a state type that exists only while a guard over its
// dependencies holds.
type SubBuilder struct {
	name  string
	deps  []*domain.StateType
	guard func(domain.Dependencies) bool
	def   any
}

// Sub starts a builder for a guarded sub-state of the given dependencies.
func Sub(name string, deps ...*domain.StateType) *SubBuilder {
	return &SubBuilder{name: name, deps: deps}
}

// ActiveWhen sets the guard. While it returns false the state is disabled.
// Without a guard the state is always active.
func (b *SubBuilder) ActiveWhen(fn func(domain.Dependencies) bool) *SubBuilder {
	b.guard = fn
	return b
}

// WithDefault sets the value the state takes when the guard first becomes
// true and no explicit value was staged.
func (b *SubBuilder) WithDefault(value any) *SubBuilder {
	b.def = value
	return b
}

// Build compiles the descriptor. The update keeps the current value across
// dependency churn while the guard holds; staged targets replace it.
func (b *SubBuilder) Build() *domain.StateType {
	guard := b.guard
	if guard == nil {
		guard = func(domain.Dependencies) bool { return true }
	}
	def := b.def

	return &domain.StateType{
		Name:      b.name,
		DependsOn: b.deps,
		NewTarget: domain.NewReplaceTarget,
		Update: func(slot *domain.Slot, deps domain.Dependencies) domain.Decision {
			if !guard(deps) {
				return domain.Disable()
			}
			t := slot.Target().(*domain.ReplaceTarget)
			if t.ShouldUpdate() {
				return domain.Enable(t.Value())
			}
			if slot.Enabled() {
				return domain.Unchanged()
			}
			return domain.Enable(def)
		},
	}
}

// DerivedBuilder constructs a state type whose value is a pure function of
// its dependencies, with no external update channel.
type DerivedBuilder struct {
	name    string
	deps    []*domain.StateType
	compute func(domain.Dependencies) domain.Decision
}

// Derived starts a builder for a computed state over the given dependencies.
func Derived(name string, deps ...*domain.StateType) *DerivedBuilder {
	return &DerivedBuilder{name: name, deps: deps}
}

// Compute sets the derivation function.
func (b *DerivedBuilder) Compute(fn func(domain.Dependencies) domain.Decision) *DerivedBuilder {
	b.compute = fn
	return b
}

// Build compiles the descriptor. Without a Compute function the state never
// changes.
func (b *DerivedBuilder) Build() *domain.StateType {
	compute := b.compute
	if compute == nil {
		compute = func(domain.Dependencies) domain.Decision { return domain.Unchanged() }
	}

	return &domain.StateType{
		Name:      b.name,
		DependsOn: b.deps,
		Update: func(_ *domain.Slot, deps domain.Dependencies) domain.Decision {
			return compute(deps)
		},
	}
}
