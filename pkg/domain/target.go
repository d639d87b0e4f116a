package domain

// Target is the pending-update payload a slot carries into the next cycle.
// The evaluator consults ShouldUpdate to decide whether the slot needs
// evaluation and calls Reset unconditionally after the update function ran,
// whether or not it acted on the pending value.
type Target interface {
	// ShouldUpdate reports whether an external update is pending.
	ShouldUpdate() bool

	// Reset clears the pending flag after the target was consumed.
	Reset()
}

// ValueStager is implemented by targets that accept a staged value from
// Machine.SetTarget. Custom target types may implement it to participate in
// the generic staging API; staging always replaces any unconsumed value
// (last-write-wins).
type ValueStager interface {
	Stage(value any) error
}

// NoTarget is the target of states with no external update channel.
// Such states change only when their dependencies do.
type NoTarget struct{}

// ShouldUpdate always reports false.
func (NoTarget) ShouldUpdate() bool { return false }

// Reset is a no-op.
func (NoTarget) Reset() {}

// ReplaceTarget stages a replacement value for the next cycle.
// It cannot disable a state; use ToggleTarget for optional states.
type ReplaceTarget struct {
	pending bool
	value   any
}

// NewReplaceTarget returns an empty replace target.
func NewReplaceTarget() Target { return &ReplaceTarget{} }

// Stage records the value to apply on the next cycle, replacing any
// unconsumed previous value.
func (t *ReplaceTarget) Stage(value any) error {
	if value == nil {
		return ErrNilTargetValue
	}
	t.pending = true
	t.value = value
	return nil
}

// Value returns the staged value, or nil when none is pending.
func (t *ReplaceTarget) Value() any {
	if !t.pending {
		return nil
	}
	return t.value
}

func (t *ReplaceTarget) ShouldUpdate() bool { return t.pending }

func (t *ReplaceTarget) Reset() {
	t.pending = false
	t.value = nil
}

// ToggleTarget stages enable-with-value, replace, or disable for the next
// cycle. A staged nil value means "disable".
type ToggleTarget struct {
	pending bool
	value   any
}

// NewToggleTarget returns an empty toggle target.
func NewToggleTarget() Target { return &ToggleTarget{} }

// Stage records the value to apply on the next cycle. A nil value stages a
// disable. Staging replaces any unconsumed previous value.
func (t *ToggleTarget) Stage(value any) error {
	t.pending = true
	t.value = value
	return nil
}

// Enable stages activation with the given value.
func (t *ToggleTarget) Enable(value any) {
	t.pending = true
	t.value = value
}

// Disable stages deactivation.
func (t *ToggleTarget) Disable() {
	t.pending = true
	t.value = nil
}

// Value returns the staged value; nil means either "disable" or "nothing
// staged", disambiguated by ShouldUpdate.
func (t *ToggleTarget) Value() any { return t.value }

func (t *ToggleTarget) ShouldUpdate() bool { return t.pending }

func (t *ToggleTarget) Reset() {
	t.pending = false
	t.value = nil
}
