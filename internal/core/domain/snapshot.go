package domain

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Snapshot is the complete tickets+users dataset returned by one fetch.
type Snapshot struct {
	Tickets   []Ticket
	Users     []User
	FetchedAt time.Time
	// Revision is a content fingerprint; two snapshots with the same
	// tickets and users share a revision regardless of FetchedAt.
	Revision string
}

// NewSnapshot builds a snapshot and stamps its revision.
func NewSnapshot(tickets []Ticket, users []User, fetchedAt time.Time) *Snapshot {
	if tickets == nil {
		tickets = []Ticket{}
	}
	if users == nil {
		users = []User{}
	}
	s := &Snapshot{
		Tickets:   tickets,
		Users:     users,
		FetchedAt: fetchedAt.UTC(),
	}
	s.Revision = s.Fingerprint()
	return s
}

// Fingerprint hashes the ticket and user content with BLAKE2b.
func (s *Snapshot) Fingerprint() string {
	payload, err := json.Marshal(struct {
		Tickets []Ticket
		Users   []User
	}{s.Tickets, s.Users})
	if err != nil {
		// Both types are plain data; Marshal cannot fail on them.
		panic(err)
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:12])
}

// IsEmpty reports whether the snapshot has no tickets.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Tickets) == 0
}
