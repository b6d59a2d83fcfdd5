package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// retainedSnapshots is how many snapshots are kept; older ones are pruned on save.
const retainedSnapshots = 5

const (
	insertSnapshotSQL = `INSERT INTO snapshots (revision, fetched_at) VALUES ($1, $2) RETURNING id`

	pruneSnapshotsSQL = `DELETE FROM snapshots
WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT $1)`

	latestSnapshotSQL = `SELECT id, revision, fetched_at FROM snapshots ORDER BY id DESC LIMIT 1`

	snapshotTicketsSQL = `SELECT id, title, status, status_malformed, priority, priority_raw, user_id, tags
FROM snapshot_tickets WHERE snapshot_id = $1 ORDER BY position`

	snapshotUsersSQL = `SELECT id, name, available
FROM snapshot_users WHERE snapshot_id = $1 ORDER BY position`
)

// SnapshotRepository persists board snapshots in PostgreSQL. Ticket and user
// order is preserved so a reloaded snapshot groups exactly like the original.
type SnapshotRepository struct {
	pool *pgxpool.Pool
	tx   *TransactionManager
}

// Ensure SnapshotRepository implements the ports.SnapshotStore interface.
var _ ports.SnapshotStore = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{
		pool: pool,
		tx:   NewTransactionManager(pool),
	}
}

// Save writes the snapshot and its rows in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, insertSnapshotSQL, snapshot.Revision, snapshot.FetchedAt).Scan(&id); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		ticketRows := make([][]any, 0, len(snapshot.Tickets))
		for i, t := range snapshot.Tickets {
			tags := t.Tags
			if tags == nil {
				tags = []string{}
			}
			status, statusMalformed := toNullStatus(t)
			priority, priorityRaw := toNullPriority(t)
			ticketRows = append(ticketRows, []any{
				id, i, t.ID, t.Title, status, statusMalformed, priority, priorityRaw, toNullText(t.UserID), tags,
			})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"snapshot_tickets"},
			[]string{"snapshot_id", "position", "id", "title", "status", "status_malformed", "priority", "priority_raw", "user_id", "tags"},
			pgx.CopyFromRows(ticketRows),
		); err != nil {
			return fmt.Errorf("copy snapshot tickets: %w", err)
		}

		userRows := make([][]any, 0, len(snapshot.Users))
		for i, u := range snapshot.Users {
			userRows = append(userRows, []any{id, i, u.ID, u.Name, u.Available})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"snapshot_users"},
			[]string{"snapshot_id", "position", "id", "name", "available"},
			pgx.CopyFromRows(userRows),
		); err != nil {
			return fmt.Errorf("copy snapshot users: %w", err)
		}

		if _, err := tx.Exec(ctx, pruneSnapshotsSQL, retainedSnapshots); err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		return nil
	})
}

// Latest loads the most recently saved snapshot.
func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot

	err := r.tx.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var (
			id        int64
			revision  string
			fetchedAt time.Time
		)
		if err := tx.QueryRow(ctx, latestSnapshotSQL).Scan(&id, &revision, &fetchedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrSnapshotNotFound
			}
			return fmt.Errorf("select latest snapshot: %w", err)
		}

		tickets, err := r.loadTickets(ctx, tx, id)
		if err != nil {
			return err
		}
		users, err := r.loadUsers(ctx, tx, id)
		if err != nil {
			return err
		}

		snapshot = domain.NewSnapshot(tickets, users, fetchedAt)
		snapshot.Revision = revision
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Ping checks database connectivity.
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *SnapshotRepository) loadTickets(ctx context.Context, tx pgx.Tx, snapshotID int64) ([]domain.Ticket, error) {
	rows, err := tx.Query(ctx, snapshotTicketsSQL, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("select snapshot tickets: %w", err)
	}

	tickets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ticket, error) {
		var (
			t               domain.Ticket
			status          pgtype.Text
			statusMalformed bool
			priority        pgtype.Int4
			priorityRaw     pgtype.Text
			userID          pgtype.Text
		)
		if err := row.Scan(&t.ID, &t.Title, &status, &statusMalformed, &priority, &priorityRaw, &userID, &t.Tags); err != nil {
			return domain.Ticket{}, err
		}
		t.Status, t.StatusKind = fromNullStatus(status, statusMalformed)
		t.Priority, t.PriorityKind, t.PriorityRaw = fromNullPriority(priority, priorityRaw)
		t.UserID = fromNullText(userID)
		if t.Tags == nil {
			t.Tags = []string{}
		}
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan snapshot tickets: %w", err)
	}
	return tickets, nil
}

func (r *SnapshotRepository) loadUsers(ctx context.Context, tx pgx.Tx, snapshotID int64) ([]domain.User, error) {
	rows, err := tx.Query(ctx, snapshotUsersSQL, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("select snapshot users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.Name, &u.Available)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan snapshot users: %w", err)
	}
	return users, nil
}
