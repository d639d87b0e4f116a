package runtime

import (
	"fmt"

	"github.com/aretw0/cascade/pkg/domain"
)

// ownerState is the slot set of one owner. Slots are owned exclusively by
// their (owner, state type) pair and mutated only under the engine mutex.
type ownerState struct {
	ref   domain.OwnerRef
	slots map[*domain.StateType]*domain.Slot
}

func newOwnerState(ref domain.OwnerRef) *ownerState {
	return &ownerState{
		ref:   ref,
		slots: make(map[*domain.StateType]*domain.Slot),
	}
}

// CreateOwner registers a fresh local owner with an empty slot set.
func (e *Engine) CreateOwner() domain.OwnerRef {
	ref := domain.NewLocalOwner()
	e.mu.Lock()
	e.owners[ref.ID()] = newOwnerState(ref)
	e.mu.Unlock()
	e.logger.Debug("owner created", "owner", ref.String())
	return ref
}

// AdoptOwner registers a local owner under an existing identity, e.g. one
// restored from a snapshot. Adopting an already-known owner is a no-op.
func (e *Engine) AdoptOwner(ref domain.OwnerRef) error {
	if ref.IsGlobal() {
		_, err := e.CreateGlobalOwner()
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.owners[ref.ID()]; !ok {
		e.owners[ref.ID()] = newOwnerState(ref)
	}
	return nil
}

// CreateGlobalOwner creates the global owner. At most one may exist; a
// second attempt fails with ErrGlobalOwnerExists and leaves the first owner
// untouched.
func (e *Engine) CreateGlobalOwner() (domain.OwnerRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.global != nil {
		return domain.OwnerRef{}, domain.ErrGlobalOwnerExists
	}
	e.global = newOwnerState(domain.Global())
	e.logger.Debug("global owner created")
	return e.global.ref, nil
}

// DestroyOwner removes an owner and all of its slots.
func (e *Engine) DestroyOwner(ref domain.OwnerRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ref.IsGlobal() {
		if e.global == nil {
			return domain.ErrOwnerNotFound
		}
		e.global = nil
		return nil
	}
	if _, ok := e.owners[ref.ID()]; !ok {
		return domain.ErrOwnerNotFound
	}
	delete(e.owners, ref.ID())
	e.logger.Debug("owner destroyed", "owner", ref.String())
	return nil
}

// HasOwner reports whether the owner exists.
func (e *Engine) HasOwner(ref domain.OwnerRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ref.IsGlobal() {
		return e.global != nil
	}
	_, ok := e.owners[ref.ID()]
	return ok
}

// Owners lists all owners, the global owner first when it exists.
func (e *Engine) Owners() []domain.OwnerRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.OwnerRef, 0, len(e.owners)+1)
	if e.global != nil {
		out = append(out, e.global.ref)
	}
	for _, ow := range e.owners {
		out = append(out, ow.ref)
	}
	return out
}

// Slot returns the slot for (owner, state type). The returned slot must be
// treated as read-only between cycles.
func (e *Engine) Slot(ref domain.OwnerRef, st *domain.StateType) (*domain.Slot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ow, err := e.ownerLocked(ref)
	if err != nil {
		return nil, false
	}
	slot, ok := ow.slots[st]
	return slot, ok
}

// ownerLocked resolves a reference to its slot set. The global owner must
// already exist.
func (e *Engine) ownerLocked(ref domain.OwnerRef) (*ownerState, error) {
	if ref.IsGlobal() {
		if e.global == nil {
			return nil, fmt.Errorf("global owner: %w", domain.ErrOwnerNotFound)
		}
		return e.global, nil
	}
	ow, ok := e.owners[ref.ID()]
	if !ok {
		return nil, fmt.Errorf("owner %s: %w", ref, domain.ErrOwnerNotFound)
	}
	return ow, nil
}

// ownerForInitLocked resolves the owner for InitState, creating the global
// owner on first use.
func (e *Engine) ownerForInitLocked(ref domain.OwnerRef) (*ownerState, error) {
	if ref.IsGlobal() && e.global == nil {
		e.global = newOwnerState(domain.Global())
		e.logger.Debug("global owner created")
		return e.global, nil
	}
	return e.ownerLocked(ref)
}

// ensureSlotsLocked creates disabled slots for every registered state type
// the owner is missing. Dependents react to their dependencies from the
// moment any state is initialized, so the whole graph is materialized at
// once.
func (e *Engine) ensureSlotsLocked(ow *ownerState) {
	for _, t := range e.registry.Ordered() {
		if _, ok := ow.slots[t]; !ok {
			ow.slots[t] = domain.NewSlot(t.MakeTarget())
		}
	}
}

// Snapshot captures the populated slots of one owner.
func (e *Engine) Snapshot(ref domain.OwnerRef) (*domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ow, err := e.ownerLocked(ref)
	if err != nil {
		return nil, err
	}
	snap := &domain.Snapshot{
		Owner:  ref.String(),
		States: make(map[string]domain.SlotSnapshot, len(ow.slots)),
	}
	for st, slot := range ow.slots {
		if !slot.Enabled() {
			continue
		}
		snap.States[st.Name] = domain.SlotSnapshot{
			Current:   slot.Current(),
			Previous:  slot.Previous(),
			Reentrant: slot.IsReentrant(),
		}
	}
	return snap, nil
}

// Restore re-establishes an owner's slots from a snapshot, silently (no
// notifications), resolving state types by name against the registry.
func (e *Engine) Restore(ref domain.OwnerRef, snap *domain.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ow, err := e.ownerForInitLocked(ref)
	if err != nil {
		return err
	}
	for name, ss := range snap.States {
		st, ok := e.registry.Lookup(name)
		if !ok {
			return fmt.Errorf("restore %q: %w", name, domain.ErrUnknownState)
		}
		e.ensureSlotsLocked(ow)
		ow.slots[st].Restore(ss.Current, ss.Previous, ss.Reentrant)
	}
	return nil
}
