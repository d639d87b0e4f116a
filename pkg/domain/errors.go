package domain

import (
	"errors"
	"strings"
)

// ErrUnknownState is returned when a state type was never registered.
var ErrUnknownState = errors.New("unknown state type")

// ErrOwnerNotFound is returned when an owner reference has no slot set.
var ErrOwnerNotFound = errors.New("owner not found")

// ErrGlobalOwnerExists is returned on an attempt to create a second global owner.
var ErrGlobalOwnerExists = errors.New("global owner already exists")

// ErrStateAlreadyInitialized is returned when InitState targets a slot that
// already holds a value.
var ErrStateAlreadyInitialized = errors.New("state already initialized")

// ErrNoUpdateChannel is returned when staging a value on a state whose target
// type accepts no external updates.
var ErrNoUpdateChannel = errors.New("state has no external update channel")

// ErrNilTargetValue is returned when a replace target is staged without a value.
var ErrNilTargetValue = errors.New("replace target requires a value")

// ErrNilUpdate is returned when a state type is registered without an update function.
var ErrNilUpdate = errors.New("state type requires an update function")

// ErrStateNameConflict is returned when two distinct descriptors share a name.
var ErrStateNameConflict = errors.New("state name already registered")

// ErrMissingDependency indicates a dependency slot was absent during
// evaluation. This is an invariant violation: the slot store creates the full
// transitive closure, so it should never surface in practice.
var ErrMissingDependency = errors.New("missing dependency slot")

// ErrSnapshotNotFound is returned by snapshot stores when no snapshot exists
// for the requested owner.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// CycleError reports a dependency cycle detected at registration time.
type CycleError struct {
	// Path lists the state names along the offending cycle, first repeated last.
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}
