package runtime

import (
	"fmt"

	"github.com/aretw0/cascade/pkg/domain"
)

// evaluateSlot runs the update contract for one slot. Callers visit slots in
// ascending rank order, so every dependency view reflects post-update state.
//
// A slot evaluates iff its target reports a pending update or any dependency
// was marked updated in this same pass. A staged first activation preempts
// the regular evaluation and leaves the target pending for the next cycle.
func (e *Engine) evaluateSlot(st *domain.StateType, ow *ownerState, slot *domain.Slot) error {
	slot.BeginCycle()

	if v, ok := slot.TakeInit(); ok {
		slot.Apply(domain.Enable(v))
		return nil
	}

	deps := make(domain.Dependencies, 0, len(st.DependsOn))
	for _, dep := range st.DependsOn {
		ds, ok := ow.slots[dep]
		if !ok {
			return fmt.Errorf("state %q on owner %s requires %q: %w",
				st.Name, ow.ref, dep.Name, domain.ErrMissingDependency)
		}
		deps = append(deps, domain.NewDependencyView(dep.Name, ds))
	}

	if !slot.Target().ShouldUpdate() && !deps.AnyUpdated() {
		return nil
	}

	slot.Apply(st.Update(slot, deps))
	slot.Target().Reset()
	return nil
}
