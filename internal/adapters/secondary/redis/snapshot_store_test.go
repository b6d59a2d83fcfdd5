package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/redis"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func strPtr(s string) *string { return &s }

func TestSnapshotStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	addr := startRedis(t)
	opts := redis.Options{Addr: addr, Key: "test:snapshot"}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	store := redis.NewSnapshotStore(client, opts, nil)

	require.NoError(t, store.Ping(ctx))

	t.Run("nothing stored", func(t *testing.T) {
		_, err := store.Latest(ctx)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	})

	t.Run("latest save wins", func(t *testing.T) {
		first := domain.NewSnapshot([]domain.Ticket{{ID: "CAM-1", Title: "First", Tags: []string{}}}, nil, time.Now())
		second := domain.NewSnapshot([]domain.Ticket{
			{ID: "CAM-2", Title: "Second", Status: "Todo", Priority: domain.PriorityHigh, UserID: strPtr("usr-1"), Tags: []string{"Feature request"}},
			{ID: "CAM-3", Title: "Third", Status: "Backlog", PriorityKind: domain.ValueAbsent, Tags: []string{}},
			{ID: "CAM-4", Title: "Fourth", Status: "7", StatusKind: domain.ValueMalformed, PriorityKind: domain.ValueMalformed, PriorityRaw: `"high"`, Tags: []string{}},
		}, []domain.User{{ID: "usr-1", Name: "Anoop sharma", Available: true}}, time.Now())

		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.Revision, got.Revision)
		assert.Equal(t, second.Tickets, got.Tickets)
		assert.Equal(t, second.Users, got.Users)
		assert.True(t, second.FetchedAt.Equal(got.FetchedAt))
	})

	t.Run("corrupt document", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:corrupt", "{not json", 0).Err())
		corrupt := redis.NewSnapshotStore(client, redis.Options{Key: "test:corrupt"}, nil)

		_, err := corrupt.Latest(ctx)
		assert.ErrorIs(t, err, apperrors.ErrMalformedSnapshot)
	})
}
