package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// payload is the upstream `{tickets, users}` document. Pointers distinguish
// an absent array from an empty one.
type payload struct {
	Tickets *[]domain.TicketSnapshot `json:"tickets"`
	Users   *[]domain.UserSnapshot   `json:"users"`
}

// DecodeSnapshot parses the upstream document. Both arrays must be present;
// unknown fields are ignored.
func DecodeSnapshot(r io.Reader, fetchedAt time.Time) (*domain.Snapshot, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedSnapshot, err)
	}

	if p.Tickets == nil {
		return nil, fmt.Errorf("%w: missing tickets", apperrors.ErrMalformedSnapshot)
	}
	if p.Users == nil {
		return nil, fmt.Errorf("%w: missing users", apperrors.ErrMalformedSnapshot)
	}

	tickets := make([]domain.Ticket, 0, len(*p.Tickets))
	for _, t := range *p.Tickets {
		tickets = append(tickets, t.ToTicket())
	}

	users := make([]domain.User, 0, len(*p.Users))
	for _, u := range *p.Users {
		users = append(users, domain.User{ID: u.ID, Name: u.Name, Available: u.Available})
	}

	return domain.NewSnapshot(tickets, users, fetchedAt), nil
}
