package ports

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// BoardOptions lists what a client may choose from and what it gets by default.
type BoardOptions struct {
	Groupings []domain.Grouping
	Orderings []domain.Ordering
	Defaults  domain.ViewOptions
}

// BoardViewer renders a board for a set of view options.
type BoardViewer interface {
	View(ctx context.Context, opts domain.ViewOptions) (*domain.BoardView, error)
	Defaults() domain.ViewOptions
}

// BoardService defines the core operations of the ticket board.
type BoardService interface {
	BoardViewer
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	Current(ctx context.Context) (*domain.Snapshot, error)
	Options() BoardOptions
	RunRefreshLoop(ctx context.Context, interval time.Duration)
}

// EventBroadcaster defines the port for broadcasting real-time events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
