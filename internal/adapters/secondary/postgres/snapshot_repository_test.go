package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boardSnapshot(titles ...string) *domain.Snapshot {
	tickets := make([]domain.Ticket, 0, len(titles))
	for i, title := range titles {
		t := domain.Ticket{
			ID:       fmt.Sprintf("CAM-%d", i+1),
			Title:    title,
			Status:   "Todo",
			Priority: domain.Priority(i%5 - 1),
			Tags:     []string{"Feature request"},
		}
		if i%2 == 0 {
			t.UserID = strPtr("usr-1")
		}
		tickets = append(tickets, t)
	}
	users := []domain.User{
		{ID: "usr-2", Name: "Yogesh", Available: true},
		{ID: "usr-1", Name: "Anoop sharma"},
	}
	return domain.NewSnapshot(tickets, users, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestSnapshotRepository_Latest_Empty(t *testing.T) {
	resetSnapshots(t)
	repo := NewSnapshotRepository(testPool)

	snapshot, err := repo.Latest(context.Background())

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
}

func TestSnapshotRepository_SaveAndLatest(t *testing.T) {
	resetSnapshots(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(testPool)

	older := boardSnapshot("Old")
	newer := boardSnapshot("Zeta", "Alpha", "Mid", "Beta")
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, newer.Revision, got.Revision)
	assert.True(t, newer.FetchedAt.Equal(got.FetchedAt))
	// Row order and nullable owners survive the round trip.
	assert.Equal(t, newer.Tickets, got.Tickets)
	assert.Equal(t, newer.Users, got.Users)
}

func TestSnapshotRepository_KeepsOddValuesApart(t *testing.T) {
	resetSnapshots(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(testPool)

	snapshot := domain.NewSnapshot([]domain.Ticket{
		{ID: "a", Title: "Negative", Status: "Todo", Priority: -1, Tags: []string{}},
		{ID: "b", Title: "No priority", Status: "Todo", PriorityKind: domain.ValueAbsent, Tags: []string{}},
		{ID: "c", Title: "Word priority", Status: "3", StatusKind: domain.ValueMalformed, PriorityKind: domain.ValueMalformed, PriorityRaw: `"high"`, Tags: []string{}},
		{ID: "d", Title: "No status", StatusKind: domain.ValueAbsent, Priority: 2, Tags: []string{}},
		{ID: "e", Title: "Empty status", Status: "", Priority: 0, Tags: []string{}},
	}, nil, time.Now())
	require.NoError(t, repo.Save(ctx, snapshot))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, snapshot.Tickets, got.Tickets)
	assert.Equal(t, domain.ValuePresent, got.Tickets[0].PriorityKind)
	assert.Equal(t, domain.Priority(-1), got.Tickets[0].Priority)
	assert.Equal(t, domain.ValueAbsent, got.Tickets[1].PriorityKind)
	assert.Equal(t, domain.ValueAbsent, got.Tickets[3].StatusKind)
	assert.Equal(t, domain.ValuePresent, got.Tickets[4].StatusKind)
}

func TestSnapshotRepository_EmptySnapshot(t *testing.T) {
	resetSnapshots(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(testPool)

	empty := domain.NewSnapshot(nil, nil, time.Now())
	require.NoError(t, repo.Save(ctx, empty))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Tickets)
}

func TestSnapshotRepository_Prunes(t *testing.T) {
	resetSnapshots(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(testPool)

	for i := 0; i < retainedSnapshots+3; i++ {
		require.NoError(t, repo.Save(ctx, boardSnapshot(fmt.Sprintf("T%d", i))))
	}

	var count int
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count))
	assert.Equal(t, retainedSnapshots, count)

	var orphaned int
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT COUNT(*) FROM snapshot_tickets WHERE snapshot_id NOT IN (SELECT id FROM snapshots)").Scan(&orphaned))
	assert.Zero(t, orphaned)
}

func TestSnapshotRepository_Ping(t *testing.T) {
	repo := NewSnapshotRepository(testPool)
	assert.NoError(t, repo.Ping(context.Background()))
}
