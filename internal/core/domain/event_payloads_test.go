package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketSnapshot_ToTicket(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		status       string
		statusKind   domain.ValueKind
		priority     domain.Priority
		priorityKind domain.ValueKind
		priorityRaw  string
	}{
		{"well formed", `{"status": "Todo", "priority": 3}`, "Todo", domain.ValuePresent, 3, domain.ValuePresent, ""},
		{"zero priority", `{"status": "Todo", "priority": 0}`, "Todo", domain.ValuePresent, 0, domain.ValuePresent, ""},
		{"negative priority", `{"status": "Todo", "priority": -1}`, "Todo", domain.ValuePresent, -1, domain.ValuePresent, ""},
		{"whole float priority", `{"status": "Todo", "priority": 3.0}`, "Todo", domain.ValuePresent, 3, domain.ValuePresent, ""},
		{"missing fields", `{}`, "", domain.ValueAbsent, 0, domain.ValueAbsent, ""},
		{"null fields", `{"status": null, "priority": null}`, "", domain.ValueAbsent, 0, domain.ValueAbsent, ""},
		{"string priority", `{"status": "Todo", "priority": "high"}`, "Todo", domain.ValuePresent, 0, domain.ValueMalformed, `"high"`},
		{"fractional priority", `{"status": "Todo", "priority": 2.5}`, "Todo", domain.ValuePresent, 0, domain.ValueMalformed, "2.5"},
		{"numeric status", `{"status": 3, "priority": 1}`, "3", domain.ValueMalformed, 1, domain.ValuePresent, ""},
		{"object status", `{"status": { "a" : 1 }}`, `{"a":1}`, domain.ValueMalformed, 0, domain.ValueAbsent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snapshot domain.TicketSnapshot
			require.NoError(t, json.Unmarshal([]byte(tt.body), &snapshot))

			ticket := snapshot.ToTicket()
			assert.Equal(t, tt.status, ticket.Status)
			assert.Equal(t, tt.statusKind, ticket.StatusKind)
			assert.Equal(t, tt.priority, ticket.Priority)
			assert.Equal(t, tt.priorityKind, ticket.PriorityKind)
			assert.Equal(t, tt.priorityRaw, ticket.PriorityRaw)
			assert.Equal(t, []string{}, ticket.Tags)
		})
	}
}

func TestTicketSnapshot_RoundTripKeepsOddValues(t *testing.T) {
	body := `[
		{"id": "a", "status": "Todo", "priority": -1},
		{"id": "b", "status": "Todo"},
		{"id": "c", "status": "Todo", "priority": null},
		{"id": "d", "status": 3, "priority": "high"},
		{"id": "e", "status": "", "priority": 2.5}
	]`

	var decoded []domain.TicketSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))

	encoded := make([]domain.TicketSnapshot, 0, len(decoded))
	for _, s := range decoded {
		encoded = append(encoded, domain.NewTicketSnapshot(s.ToTicket()))
	}
	raw, err := json.Marshal(encoded)
	require.NoError(t, err)

	var fields []struct {
		Status   json.RawMessage `json:"status"`
		Priority json.RawMessage `json:"priority"`
	}
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Len(t, fields, 5)

	assert.JSONEq(t, `-1`, string(fields[0].Priority))
	assert.JSONEq(t, `null`, string(fields[1].Priority))
	assert.JSONEq(t, `null`, string(fields[2].Priority))
	assert.JSONEq(t, `"high"`, string(fields[3].Priority))
	assert.JSONEq(t, `3`, string(fields[3].Status))
	assert.JSONEq(t, `""`, string(fields[4].Status))
	assert.JSONEq(t, `2.5`, string(fields[4].Priority))

	// Decoding the re-encoded form gives the same tickets back.
	var again []domain.TicketSnapshot
	require.NoError(t, json.Unmarshal(raw, &again))
	for i := range decoded {
		assert.Equal(t, decoded[i].ToTicket(), again[i].ToTicket())
	}
}

func TestNewTicketSnapshot_Tags(t *testing.T) {
	snapshot := domain.NewTicketSnapshot(domain.Ticket{ID: "a"})
	assert.Equal(t, []string{}, snapshot.Tag)
}

func TestSnapshotDocument_RoundTrip(t *testing.T) {
	original := domain.NewSnapshot(sampleTickets(), sampleUsers(), time.Date(2024, 2, 3, 4, 5, 6, 789, time.UTC))

	raw, err := json.Marshal(domain.NewSnapshotDocument(original))
	require.NoError(t, err)

	var doc domain.SnapshotDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	restored := doc.ToSnapshot()

	assert.Equal(t, original.Revision, restored.Revision)
	assert.True(t, original.FetchedAt.Equal(restored.FetchedAt))
	assert.Equal(t, ticketIDs(original.Tickets), ticketIDs(restored.Tickets))
	assert.Equal(t, original.Users, restored.Users)
}

func TestNewBoardViewSnapshot(t *testing.T) {
	snapshot := domain.NewSnapshot(sampleTickets(), sampleUsers(), time.Now())
	view, err := domain.BuildBoard(snapshot, domain.ViewOptions{
		Grouping: domain.GroupByUser,
		Ordering: domain.OrderByPriority,
	}, domain.NewOrderer(domain.DefaultLocale))
	require.NoError(t, err)

	payload := domain.NewBoardViewSnapshot(view)

	assert.Equal(t, "user", payload.Grouping)
	assert.Equal(t, "priority", payload.Ordering)
	assert.Equal(t, 6, payload.TicketCount)
	require.Len(t, payload.Columns, 3)
	assert.Equal(t, "Anoop sharma", payload.Columns[0].Label)
	assert.Equal(t, 2, payload.Columns[0].Count)
	assert.Equal(t, "CAM-1", payload.Columns[0].Tickets[0].ID)
	assert.Equal(t, domain.UnassignedLabel, payload.Columns[2].Key)
	assert.Empty(t, payload.Columns[2].Kind)
}

func TestNewBoardViewSnapshot_ColumnKinds(t *testing.T) {
	snapshot := domain.NewSnapshot([]domain.Ticket{
		{ID: "a", Priority: -1},
		{ID: "b", PriorityKind: domain.ValueAbsent},
		{ID: "c", PriorityKind: domain.ValueMalformed, PriorityRaw: `"high"`},
	}, nil, time.Now())
	view, err := domain.BuildBoard(snapshot, domain.ViewOptions{
		Grouping: domain.GroupByPriority,
		Ordering: domain.OrderByTitle,
	}, domain.NewOrderer(domain.DefaultLocale))
	require.NoError(t, err)

	payload := domain.NewBoardViewSnapshot(view)

	require.Len(t, payload.Columns, 3)
	assert.Equal(t, "-1", payload.Columns[0].Key)
	assert.Empty(t, payload.Columns[0].Kind)
	assert.Equal(t, "", payload.Columns[1].Key)
	assert.Equal(t, "absent", payload.Columns[1].Kind)
	assert.Equal(t, `"high"`, payload.Columns[2].Key)
	assert.Equal(t, "malformed", payload.Columns[2].Kind)
	assert.Equal(t, "Priority high", payload.Columns[2].Label)
}
