package memory

import (
	"context"
	"sync"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// SnapshotStore keeps the latest snapshot for the life of the process.
type SnapshotStore struct {
	mu     sync.RWMutex
	latest *domain.Snapshot
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snapshot
	return nil
}

func (s *SnapshotStore) Latest(_ context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, apperrors.ErrSnapshotNotFound
	}
	return s.latest, nil
}

func (s *SnapshotStore) Ping(_ context.Context) error {
	return nil
}
