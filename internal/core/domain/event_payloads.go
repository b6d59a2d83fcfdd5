package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// TicketSnapshot matches the upstream and API shape for tickets. Status and
// priority stay raw so values of an unexpected type survive decoding.
type TicketSnapshot struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Tag      []string        `json:"tag"`
	UserID   *string         `json:"userId,omitempty"`
	Status   json.RawMessage `json:"status"`
	Priority json.RawMessage `json:"priority"`
}

// UserSnapshot matches the upstream and API shape for users.
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// SnapshotDocument is a whole snapshot in API shape.
type SnapshotDocument struct {
	Tickets   []TicketSnapshot `json:"tickets"`
	Users     []UserSnapshot   `json:"users"`
	FetchedAt string           `json:"fetchedAt"`
	Revision  string           `json:"revision"`
}

// ColumnSnapshot is one board column in API shape.
type ColumnSnapshot struct {
	Key string `json:"key"`
	// Kind is set for absent or malformed keys.
	Kind    string           `json:"kind,omitempty"`
	Label   string           `json:"label"`
	Count   int              `json:"count"`
	Tickets []TicketSnapshot `json:"tickets"`
}

// BoardViewSnapshot is a rendered board in API shape.
type BoardViewSnapshot struct {
	Grouping    string           `json:"grouping"`
	Ordering    string           `json:"ordering"`
	Revision    string           `json:"revision"`
	FetchedAt   string           `json:"fetchedAt"`
	TicketCount int              `json:"ticketCount"`
	Columns     []ColumnSnapshot `json:"columns"`
}

// NewTicketSnapshot builds a ticket snapshot from a domain ticket.
func NewTicketSnapshot(ticket Ticket) TicketSnapshot {
	tags := ticket.Tags
	if tags == nil {
		tags = []string{}
	}

	return TicketSnapshot{
		ID:       ticket.ID,
		Title:    ticket.Title,
		Tag:      tags,
		UserID:   ticket.UserID,
		Status:   encodeStatus(ticket),
		Priority: encodePriority(ticket),
	}
}

// ToTicket converts back to a domain ticket. Status and priority values of
// an unexpected type are kept as ValueMalformed instead of failing.
func (t TicketSnapshot) ToTicket() Ticket {
	tags := t.Tag
	if tags == nil {
		tags = []string{}
	}

	ticket := Ticket{
		ID:     t.ID,
		Title:  t.Title,
		UserID: t.UserID,
		Tags:   tags,
	}
	ticket.Status, ticket.StatusKind = decodeStatus(t.Status)
	ticket.Priority, ticket.PriorityKind, ticket.PriorityRaw = decodePriority(t.Priority)
	return ticket
}

func decodeStatus(raw json.RawMessage) (string, ValueKind) {
	if isNull(raw) {
		return "", ValueAbsent
	}
	var status string
	if err := json.Unmarshal(raw, &status); err == nil {
		return status, ValuePresent
	}
	return compactRaw(raw), ValueMalformed
}

// decodePriority accepts any whole number in int32 range, so 3 and 3.0 are
// the same priority. Strings, fractions and other types are malformed.
func decodePriority(raw json.RawMessage) (Priority, ValueKind, string) {
	if isNull(raw) {
		return 0, ValueAbsent, ""
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil &&
		n == math.Trunc(n) && n >= math.MinInt32 && n <= math.MaxInt32 {
		return Priority(n), ValuePresent, ""
	}
	return 0, ValueMalformed, compactRaw(raw)
}

func encodeStatus(t Ticket) json.RawMessage {
	switch t.StatusKind {
	case ValueAbsent:
		return nil
	case ValueMalformed:
		return rawOrNull(t.Status)
	}
	encoded, _ := json.Marshal(t.Status)
	return encoded
}

func encodePriority(t Ticket) json.RawMessage {
	switch t.PriorityKind {
	case ValueAbsent:
		return nil
	case ValueMalformed:
		return rawOrNull(t.PriorityRaw)
	}
	return json.RawMessage(strconv.Itoa(int(t.Priority)))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func compactRaw(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

// rawOrNull guards against raw text that is not valid JSON, which would
// make the whole document fail to encode.
func rawOrNull(raw string) json.RawMessage {
	if !json.Valid([]byte(raw)) {
		return nil
	}
	return json.RawMessage(raw)
}

// NewSnapshotDocument builds the API document for a snapshot.
func NewSnapshotDocument(snapshot *Snapshot) SnapshotDocument {
	tickets := make([]TicketSnapshot, 0, len(snapshot.Tickets))
	for _, t := range snapshot.Tickets {
		tickets = append(tickets, NewTicketSnapshot(t))
	}

	users := make([]UserSnapshot, 0, len(snapshot.Users))
	for _, u := range snapshot.Users {
		users = append(users, UserSnapshot{ID: u.ID, Name: u.Name, Available: u.Available})
	}

	return SnapshotDocument{
		Tickets:   tickets,
		Users:     users,
		FetchedAt: snapshot.FetchedAt.UTC().Format(time.RFC3339Nano),
		Revision:  snapshot.Revision,
	}
}

// ToSnapshot rebuilds a domain snapshot. An unparseable timestamp yields
// the zero time.
func (d SnapshotDocument) ToSnapshot() *Snapshot {
	tickets := make([]Ticket, 0, len(d.Tickets))
	for _, t := range d.Tickets {
		tickets = append(tickets, t.ToTicket())
	}

	users := make([]User, 0, len(d.Users))
	for _, u := range d.Users {
		users = append(users, User{ID: u.ID, Name: u.Name, Available: u.Available})
	}

	fetchedAt, _ := time.Parse(time.RFC3339Nano, d.FetchedAt)
	snapshot := NewSnapshot(tickets, users, fetchedAt)
	if d.Revision != "" {
		snapshot.Revision = d.Revision
	}
	return snapshot
}

// NewBoardViewSnapshot builds the API shape of a rendered board.
func NewBoardViewSnapshot(view *BoardView) BoardViewSnapshot {
	columns := make([]ColumnSnapshot, 0, len(view.Columns))
	for _, c := range view.Columns {
		tickets := make([]TicketSnapshot, 0, len(c.Tickets))
		for _, t := range c.Tickets {
			tickets = append(tickets, NewTicketSnapshot(t))
		}
		var kind string
		if c.Key.Kind != ValuePresent {
			kind = c.Key.Kind.String()
		}
		columns = append(columns, ColumnSnapshot{
			Key:     c.Key.String(),
			Kind:    kind,
			Label:   c.Label,
			Count:   len(c.Tickets),
			Tickets: tickets,
		})
	}

	return BoardViewSnapshot{
		Grouping:    string(view.Options.Grouping),
		Ordering:    string(view.Options.Ordering),
		Revision:    view.Revision,
		FetchedAt:   view.FetchedAt.UTC().Format(time.RFC3339),
		TicketCount: view.TicketCount,
		Columns:     columns,
	}
}
