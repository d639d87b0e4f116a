package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory snapshot store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := copySnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Owner] = copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, owner string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[owner]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return copySnapshot(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, owner)
	return nil
}

// List returns owners with stored snapshots.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]string, 0, len(s.data))
	for owner := range s.data {
		owners = append(owners, owner)
	}
	return owners, nil
}

func copySnapshot(snap *domain.Snapshot) *domain.Snapshot {
	out := &domain.Snapshot{
		Owner:  snap.Owner,
		States: make(map[string]domain.SlotSnapshot, len(snap.States)),
	}
	for name, ss := range snap.States {
		out.States[name] = ss
	}
	return out
}
