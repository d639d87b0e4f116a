package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// OwnerRef identifies the holder of a set of state slots: either the
// process-wide global owner or a local owner with a UUID identity.
// The zero value is not a valid owner; use Global, NewLocalOwner or LocalOwner.
type OwnerRef struct {
	id     uuid.UUID
	global bool
}

// Global returns the reference to the global owner.
// At most one global owner can exist in a machine at any time.
func Global() OwnerRef {
	return OwnerRef{global: true}
}

// NewLocalOwner mints a local owner reference with a fresh identity.
func NewLocalOwner() OwnerRef {
	return OwnerRef{id: uuid.New()}
}

// LocalOwner wraps an existing identity, e.g. one restored from a snapshot.
func LocalOwner(id uuid.UUID) OwnerRef {
	return OwnerRef{id: id}
}

// IsGlobal reports whether this reference points at the global owner.
func (o OwnerRef) IsGlobal() bool {
	return o.global
}

// ID returns the local identity. For the global owner this is the zero UUID.
func (o OwnerRef) ID() uuid.UUID {
	return o.id
}

func (o OwnerRef) String() string {
	if o.global {
		return "global"
	}
	return o.id.String()
}

// ParseOwner converts the textual form produced by String back into a reference.
func ParseOwner(s string) (OwnerRef, error) {
	if s == "global" {
		return Global(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return OwnerRef{}, fmt.Errorf("invalid owner %q: %w", s, err)
	}
	return LocalOwner(id), nil
}
