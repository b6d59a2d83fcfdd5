package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"golang.org/x/text/language"
)

// BoardService holds the current snapshot and renders board views from it.
type BoardService struct {
	source      ports.SnapshotSource
	store       ports.SnapshotStore
	broadcaster ports.EventBroadcaster
	orderer     domain.Orderer
	defaults    domain.ViewOptions
	logger      *slog.Logger

	// mu guards current; refreshMu serialises fetches.
	mu        sync.RWMutex
	current   *domain.Snapshot
	refreshMu sync.Mutex
}

var _ ports.BoardService = (*BoardService)(nil)

// BoardServiceConfig carries the board's defaults.
type BoardServiceConfig struct {
	Defaults domain.ViewOptions
	Orderer  domain.Orderer
}

// NewBoardService creates a new board service. broadcaster may be nil.
func NewBoardService(
	source ports.SnapshotSource,
	store ports.SnapshotStore,
	broadcaster ports.EventBroadcaster,
	cfg BoardServiceConfig,
	logger *slog.Logger,
) *BoardService {
	defaults := cfg.Defaults
	if defaults.Grouping == "" {
		defaults.Grouping = domain.DefaultGrouping
	}
	if defaults.Ordering == "" {
		defaults.Ordering = domain.DefaultOrdering
	}
	orderer := cfg.Orderer
	if orderer.Locale() == language.Und {
		orderer = domain.NewOrderer(domain.DefaultLocale)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BoardService{
		source:      source,
		store:       store,
		broadcaster: broadcaster,
		orderer:     orderer,
		defaults:    defaults,
		logger:      logger.With("component", "board_service"),
	}
}

// Refresh fetches a new snapshot, persists it and makes it current.
// Subscribers are notified only when the content changed.
func (s *BoardService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snapshot, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh board: %w", err)
	}

	// The store only backs restarts; a failed save must not hide fresh data.
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to persist snapshot",
			"revision", snapshot.Revision,
			"error", err,
		)
	}

	s.mu.Lock()
	previous := s.current
	s.current = snapshot
	s.mu.Unlock()

	changed := previous == nil || previous.Revision != snapshot.Revision
	s.logger.Info("snapshot refreshed",
		"revision", snapshot.Revision,
		"tickets", len(snapshot.Tickets),
		"users", len(snapshot.Users),
		"changed", changed,
	)

	if changed && snapshot.IsEmpty() {
		s.logger.Warn("upstream returned no tickets", "revision", snapshot.Revision)
	}

	if changed {
		s.broadcastSnapshotUpdated(snapshot)
	}

	return snapshot, nil
}

// Current returns the in-memory snapshot, falling back to the store.
func (s *BoardService) Current(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current != nil {
		return current, nil
	}

	stored, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return nil, apperrors.ErrSnapshotUnavailable
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSnapshotUnavailable, err)
	}

	s.mu.Lock()
	if s.current == nil {
		s.current = stored
	}
	current = s.current
	s.mu.Unlock()

	s.logger.Info("using last-known snapshot", "revision", current.Revision, "fetched_at", current.FetchedAt)
	return current, nil
}

// View groups, orders and labels the current snapshot. Empty options fall
// back to the configured defaults.
func (s *BoardService) View(ctx context.Context, opts domain.ViewOptions) (*domain.BoardView, error) {
	if opts.Grouping == "" {
		opts.Grouping = s.defaults.Grouping
	}
	if opts.Ordering == "" {
		opts.Ordering = s.defaults.Ordering
	}

	snapshot, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	return domain.BuildBoard(snapshot, opts, s.orderer)
}

// Defaults returns the view options used when a client picks none.
func (s *BoardService) Defaults() domain.ViewOptions {
	return s.defaults
}

// Options lists every grouping and ordering a client may choose.
func (s *BoardService) Options() ports.BoardOptions {
	return ports.BoardOptions{
		Groupings: domain.Groupings(),
		Orderings: domain.Orderings(),
		Defaults:  s.defaults,
	}
}

// RunRefreshLoop refreshes on every tick until ctx is cancelled. A
// non-positive interval means the startup fetch is the only one.
func (s *BoardService) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}

func (s *BoardService) broadcastSnapshotUpdated(snapshot *domain.Snapshot) {
	if s.broadcaster == nil {
		return
	}

	event := domain.Event{
		Type:     domain.EventSnapshotUpdated,
		Revision: snapshot.Revision,
	}
	if err := s.broadcaster.Broadcast(event); err != nil {
		s.logger.Warn("failed to broadcast snapshot update", "error", err)
	}
}
