package runtime

import (
	"context"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
)

// RunCycle executes one full transition cycle across all owners:
//
//  1. Update phase: evaluate slots rank-ascending (root to leaf).
//  2. Exit phase: notify updated slots that were active entering the cycle,
//     rank-descending (leaf to root).
//  3. Enter phase: notify updated slots active after the update phase,
//     rank-ascending (root to leaf).
//
// All updates settle before any notification fires, so observers always see
// a coherent current/previous pair. Panics from user update functions are
// not recovered: they abort the cycle with later phases unexecuted, and the
// cycle must be treated as all-or-nothing.
func (e *Engine) RunCycle(ctx context.Context) (domain.CycleStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	if e.hooks.OnCycleStart != nil {
		e.hooks.OnCycleStart(ctx)
	}

	e.applyQueuedLocked()

	ordered := e.registry.Ordered()
	owners := e.allOwnersLocked()
	stats := domain.CycleStats{Owners: len(owners)}

	for _, st := range ordered {
		for _, ow := range owners {
			slot, ok := ow.slots[st]
			if !ok {
				continue
			}
			if err := e.evaluateSlot(st, ow, slot); err != nil {
				return stats, err
			}
			if slot.IsUpdated() {
				stats.Updated++
			}
		}
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		st := ordered[i]
		for _, ow := range owners {
			slot, ok := ow.slots[st]
			if !ok || !slot.IsUpdated() || !slot.WasEnabled() {
				continue
			}
			ev := e.eventFor(ow, st, slot)
			stats.Exits++
			e.subs.dispatchExit(ctx, st, ev)
			if e.hooks.OnStateExit != nil {
				e.hooks.OnStateExit(ctx, &ev)
			}
		}
	}

	for _, st := range ordered {
		for _, ow := range owners {
			slot, ok := ow.slots[st]
			if !ok || !slot.IsUpdated() || !slot.Enabled() {
				continue
			}
			ev := e.eventFor(ow, st, slot)
			stats.Enters++
			e.subs.dispatchEnter(ctx, st, ev)
			if e.hooks.OnStateEnter != nil {
				e.hooks.OnStateEnter(ctx, &ev)
			}
		}
	}

	stats.Duration = time.Since(start)
	if e.hooks.OnCycleEnd != nil {
		e.hooks.OnCycleEnd(ctx, stats)
	}
	e.logger.Debug("transition cycle complete",
		"updated", stats.Updated,
		"exits", stats.Exits,
		"enters", stats.Enters,
		"owners", stats.Owners,
	)
	return stats, nil
}

// allOwnersLocked lists owner states, the global owner first. Owner order
// within a rank tier is unspecified; the rank loops above are the only
// ordering contract.
func (e *Engine) allOwnersLocked() []*ownerState {
	out := make([]*ownerState, 0, len(e.owners)+1)
	if e.global != nil {
		out = append(out, e.global)
	}
	for _, ow := range e.owners {
		out = append(out, ow)
	}
	return out
}

func (e *Engine) eventFor(ow *ownerState, st *domain.StateType, slot *domain.Slot) domain.TransitionEvent {
	ev := domain.TransitionEvent{
		State:     st.Name,
		Previous:  slot.Previous(),
		Current:   slot.Current(),
		Reentrant: slot.IsReentrant(),
	}
	if !ow.ref.IsGlobal() {
		ref := ow.ref
		ev.Owner = &ref
	}
	return ev
}
