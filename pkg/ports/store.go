// Package ports defines the driven-side interfaces of the Cascade engine.
// The core emits slot snapshots; adapters implement persistence for them.
package ports

import (
	"context"

	"github.com/aretw0/cascade/pkg/domain"
)

// SnapshotStore persists owner snapshots, enabling "stop & resume" machines.
type SnapshotStore interface {
	// Save persists the snapshot under the owner's textual identity.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot for an owner.
	// Returns domain.ErrSnapshotNotFound if none exists.
	Load(ctx context.Context, owner string) (*domain.Snapshot, error)

	// Delete removes the snapshot for an owner.
	Delete(ctx context.Context, owner string) error

	// List returns the owners with stored snapshots.
	List(ctx context.Context) ([]string, error)
}
