package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKey is where the latest snapshot document is kept.
const DefaultKey = "ticket-board:snapshot:latest"

// Options configures the connection and storage of the store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// TTL of zero keeps the snapshot until it is overwritten.
	TTL time.Duration
}

// SnapshotStore keeps the latest snapshot as one JSON document in Redis.
type SnapshotStore struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewClient connects to Redis. An unreachable server is logged, not fatal;
// readiness checks report it through Ping.
func NewClient(ctx context.Context, opts Options, logger *slog.Logger) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", "addr", opts.Addr, "error", err)
	} else {
		logger.Info("connected to redis", "addr", opts.Addr)
	}
	return client
}

// NewSnapshotStore wraps an existing client.
func NewSnapshotStore(client *goredis.Client, opts Options, logger *slog.Logger) *SnapshotStore {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		client: client,
		key:    key,
		ttl:    opts.TTL,
		logger: logger.With("component", "redis_snapshot_store"),
	}
}

func (s *SnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	raw, err := json.Marshal(domain.NewSnapshotDocument(snapshot))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	s.logger.Debug("snapshot stored", "key", s.key, "revision", snapshot.Revision, "bytes", len(raw))
	return nil
}

func (s *SnapshotStore) Latest(ctx context.Context) (*domain.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var doc domain.SnapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: stored document: %v", apperrors.ErrMalformedSnapshot, err)
	}
	return doc.ToSnapshot(), nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}
