package domain

// Slot is the per-owner record for one registered state type.
//
// Values are held as `any` and must be comparable with ==; nil marks the
// disabled state. `previous` always holds the last *distinct* value: a
// reentry (a change whose new value equals the old one) raises the reentrant
// flag instead of touching it, so observers can tell "reentered the same
// value" apart from "first activation".
type Slot struct {
	current   any
	previous  any
	reentrant bool
	target    Target
	updated   bool

	// wasEnabled records the enabled status when the current cycle began;
	// the exit phase uses it to decide whether there is anything to exit.
	wasEnabled bool

	// pendingInit carries a staged first activation, consumed by the next
	// update phase instead of the regular target.
	pendingInit *initRequest
}

type initRequest struct {
	value any
}

// NewSlot creates a disabled slot with the given target.
// A nil target defaults to NoTarget.
func NewSlot(target Target) *Slot {
	if target == nil {
		target = NoTarget{}
	}
	return &Slot{target: target}
}

// Current returns the current value, or nil when the state is disabled.
func (s *Slot) Current() any { return s.current }

// Previous returns the last distinct value held before the most recent
// change. It is left untouched by reentries.
func (s *Slot) Previous() any { return s.previous }

// IsReentrant reports whether the most recent change produced a value equal
// to the one it replaced.
func (s *Slot) IsReentrant() bool { return s.reentrant }

// IsUpdated reports whether the slot changed during the most recent cycle.
// The flag stays readable until the next cycle visits the slot.
func (s *Slot) IsUpdated() bool { return s.updated }

// Enabled reports whether the state currently holds a value.
func (s *Slot) Enabled() bool { return s.current != nil }

// Target returns the slot's pending-update payload.
func (s *Slot) Target() Target { return s.target }

// EffectivePrevious returns the value held entering the most recent change,
// reentries included: for a reentrant change this is the current value.
func (s *Slot) EffectivePrevious() any {
	if s.reentrant {
		return s.current
	}
	return s.previous
}

// BeginCycle clears the updated flag and records the enabled status entering
// the cycle. The scheduler calls it once per slot at the start of the update
// phase.
func (s *Slot) BeginCycle() {
	s.updated = false
	s.wasEnabled = s.current != nil
}

// WasEnabled reports whether the slot held a value when the current cycle
// began. Only meaningful between BeginCycle and the end of the cycle.
func (s *Slot) WasEnabled() bool { return s.wasEnabled }

// ScheduleInit stages a first activation to be consumed by the next update
// phase, so the enter notification obeys phase ordering.
func (s *Slot) ScheduleInit(value any) {
	s.pendingInit = &initRequest{value: value}
}

// TakeInit consumes a staged first activation, if any.
func (s *Slot) TakeInit() (any, bool) {
	if s.pendingInit == nil {
		return nil, false
	}
	v := s.pendingInit.value
	s.pendingInit = nil
	return v, true
}

// Populate silently establishes the initial value: current and previous are
// set to it, the slot counts as reentrant and not updated, so no
// notifications ever fire for this activation.
func (s *Slot) Populate(value any) {
	s.current = value
	s.previous = value
	s.reentrant = true
	s.updated = false
}

// Restore re-establishes persisted values without marking the slot updated.
// No notifications ever fire for a restored activation.
func (s *Slot) Restore(current, previous any, reentrant bool) {
	s.current = current
	s.previous = previous
	s.reentrant = reentrant
	s.updated = false
}

// Apply commits an evaluation decision to the slot.
//
//   - Unchanged leaves the slot untouched.
//   - Disable clears the value; disabling an already-disabled slot is no change.
//   - Enable with the current value is a reentry: previous stays, reentrant
//     and updated are raised.
//   - Enable with a different value shifts previous and marks the slot
//     reentrant iff the new value equals the stored previous one (the state
//     returned to the value it held before disabling).
func (s *Slot) Apply(d Decision) {
	switch d.kind {
	case decisionUnchanged:
		return
	case decisionDisable:
		if s.current == nil {
			return
		}
		s.previous = s.current
		s.current = nil
		s.reentrant = false
		s.updated = true
	case decisionEnable:
		if s.current != nil && s.current == d.value {
			s.reentrant = true
			s.updated = true
			return
		}
		if s.current != nil {
			s.previous = s.current
		}
		s.current = d.value
		s.reentrant = s.current == s.previous
		s.updated = true
	}
}
