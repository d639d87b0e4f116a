package domain

import (
	"context"
	"time"
)

// TransitionEvent describes one exit or enter notification.
type TransitionEvent struct {
	// Owner is nil for the global broadcast, since at most one global owner
	// exists; local notifications carry the owner reference.
	Owner *OwnerRef

	// State is the state type name.
	State string

	// Previous is the last distinct value (unchanged across reentries).
	Previous any

	// Current is the settled value for this cycle; nil on deactivation.
	Current any

	// Reentrant marks transitions whose new value equals the prior one.
	Reentrant bool
}

// Handler consumes exit or enter notifications. Handlers must not stage
// targets synchronously through Machine.SetTarget; use Machine.QueueTarget,
// which defers to the next cycle and preserves phase coherence.
type Handler func(ctx context.Context, ev TransitionEvent)

// OverwriteEvent reports a staged target being replaced before it was
// consumed. Last-write-wins is by design; the event makes it observable.
type OverwriteEvent struct {
	Owner OwnerRef
	State string
}

// CycleStats summarizes one transition cycle.
type CycleStats struct {
	// Updated counts slots whose value or enabled status changed.
	Updated int `json:"updated"`
	// Exits and Enters count dispatched notifications.
	Exits  int `json:"exits"`
	Enters int `json:"enters"`
	// Owners counts owners visited by the update phase.
	Owners int `json:"owners"`
	// Duration covers all three phases.
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// All fields are optional.
type LifecycleHooks struct {
	OnCycleStart      func(context.Context)
	OnCycleEnd        func(context.Context, CycleStats)
	OnStateExit       func(context.Context, *TransitionEvent)
	OnStateEnter      func(context.Context, *TransitionEvent)
	OnTargetOverwrite func(context.Context, *OverwriteEvent)
}

// Merge combines two hook sets into one; for each callback the receiver's
// hook runs first, then the other's.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCycleStart:      mergeFns(h.OnCycleStart, other.OnCycleStart),
		OnCycleEnd:        mergeFns1(h.OnCycleEnd, other.OnCycleEnd),
		OnStateExit:       mergeFns1(h.OnStateExit, other.OnStateExit),
		OnStateEnter:      mergeFns1(h.OnStateEnter, other.OnStateEnter),
		OnTargetOverwrite: mergeFns1(h.OnTargetOverwrite, other.OnTargetOverwrite),
	}
}

func mergeFns(a, b func(context.Context)) func(context.Context) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context) {
		a(ctx)
		b(ctx)
	}
}

func mergeFns1[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
