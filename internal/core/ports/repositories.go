package ports

import (
	"context"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// SnapshotSource fetches the full ticket/user dataset from upstream.
type SnapshotSource interface {
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}

// SnapshotStore keeps the last-known snapshot so the board survives an
// unreachable upstream.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	// Latest returns apperrors.ErrSnapshotNotFound when nothing was saved yet.
	Latest(ctx context.Context) (*domain.Snapshot, error)
	Ping(ctx context.Context) error
}
