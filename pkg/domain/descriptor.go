package domain

// UpdateFunc computes the next value of a state. It receives the state's own
// slot (including its pending target) and read-only views of its
// dependencies' slots, already settled for this cycle. The function may
// mutate only its own slot's target; dependency views are read-only.
type UpdateFunc func(slot *Slot, deps Dependencies) Decision

// StateType is the static descriptor of a registered kind of state: an
// identity, a declared dependency set and an update function. Rank is
// computed once at registration by the registry and never recomputed.
type StateType struct {
	// Name must be unique within a registry.
	Name string

	// DependsOn lists the states whose updates propagate to this one.
	// Every dependency is evaluated in a strictly earlier rank tier.
	DependsOn []*StateType

	// Update is invoked whenever the target is pending or a dependency
	// changed in the same cycle. Required.
	Update UpdateFunc

	// NewTarget builds the pending-update payload for each new slot.
	// Nil means NoTarget: the state has no external update channel.
	NewTarget func() Target
}

func (st *StateType) String() string { return st.Name }

// MakeTarget instantiates the slot target for this state type.
func (st *StateType) MakeTarget() Target {
	if st.NewTarget == nil {
		return NoTarget{}
	}
	return st.NewTarget()
}

type decisionKind int

const (
	decisionUnchanged decisionKind = iota
	decisionDisable
	decisionEnable
)

// Decision is the outcome of an update function.
type Decision struct {
	kind  decisionKind
	value any
}

// Unchanged leaves the slot as it is.
func Unchanged() Decision { return Decision{kind: decisionUnchanged} }

// Disable clears the state value on the next apply.
func Disable() Decision { return Decision{kind: decisionDisable} }

// Enable sets the state to the given value. A nil value is equivalent to
// Disable, mirroring the optional representation of state values.
func Enable(value any) Decision {
	if value == nil {
		return Disable()
	}
	return Decision{kind: decisionEnable, value: value}
}

// DependencyView is a read-only window onto a dependency's slot.
type DependencyView struct {
	name string
	slot *Slot
}

// NewDependencyView wraps a slot for consumption by update functions.
func NewDependencyView(name string, slot *Slot) DependencyView {
	return DependencyView{name: name, slot: slot}
}

// Name returns the dependency's state type name.
func (v DependencyView) Name() string { return v.name }

// Current returns the dependency's current value, nil when disabled.
func (v DependencyView) Current() any { return v.slot.Current() }

// Previous returns the dependency's last distinct value.
func (v DependencyView) Previous() any { return v.slot.Previous() }

// IsReentrant reports whether the dependency's latest change was a reentry.
func (v DependencyView) IsReentrant() bool { return v.slot.IsReentrant() }

// IsUpdated reports whether the dependency changed in this cycle.
func (v DependencyView) IsUpdated() bool { return v.slot.IsUpdated() }

// Enabled reports whether the dependency currently holds a value.
func (v DependencyView) Enabled() bool { return v.slot.Enabled() }

// Dependencies holds the views of a state's dependencies, ordered as
// declared in StateType.DependsOn.
type Dependencies []DependencyView

// Get looks a dependency up by state type name.
func (d Dependencies) Get(name string) (DependencyView, bool) {
	for _, v := range d {
		if v.name == name {
			return v, true
		}
	}
	return DependencyView{}, false
}

// AnyUpdated reports whether any dependency changed in this cycle.
func (d Dependencies) AnyUpdated() bool {
	for _, v := range d {
		if v.IsUpdated() {
			return true
		}
	}
	return false
}

// StateInfo is the introspection record for one registered state type.
type StateInfo struct {
	Name      string   `json:"name"`
	Rank      int      `json:"rank"`
	DependsOn []string `json:"depends_on,omitempty"`
}
