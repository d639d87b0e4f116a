package domain

// SlotSnapshot captures the persistent part of one slot. Targets and cycle
// flags are transient and deliberately excluded.
type SlotSnapshot struct {
	Current   any  `json:"current,omitempty"`
	Previous  any  `json:"previous,omitempty"`
	Reentrant bool `json:"reentrant,omitempty"`
}

// Snapshot captures all populated slots of one owner. Snapshots round-trip
// through JSON, so restored values carry JSON types (string, float64, ...);
// callers using richer value types must convert before restoring.
type Snapshot struct {
	Owner  string                  `json:"owner"`
	States map[string]SlotSnapshot `json:"states"`
}
