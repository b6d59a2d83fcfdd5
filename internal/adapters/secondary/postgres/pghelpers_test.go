package postgres

import (
	"testing"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNullText(t *testing.T) {
	assert.False(t, toNullText(nil).Valid)
	assert.Nil(t, fromNullText(toNullText(nil)))
	assert.Equal(t, "usr-1", *fromNullText(toNullText(strPtr("usr-1"))))
}

func TestNullStatus(t *testing.T) {
	tests := []struct {
		name   string
		ticket domain.Ticket
	}{
		{"present", domain.Ticket{Status: "Todo"}},
		{"empty", domain.Ticket{Status: ""}},
		{"absent", domain.Ticket{StatusKind: domain.ValueAbsent}},
		{"malformed", domain.Ticket{Status: "3", StatusKind: domain.ValueMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := fromNullStatus(toNullStatus(tt.ticket))
			assert.Equal(t, tt.ticket.Status, status)
			assert.Equal(t, tt.ticket.StatusKind, kind)
		})
	}
}

func TestNullPriority(t *testing.T) {
	tests := []struct {
		name   string
		ticket domain.Ticket
	}{
		{"none", domain.Ticket{Priority: domain.PriorityNone}},
		{"negative", domain.Ticket{Priority: -1}},
		{"out of range", domain.Ticket{Priority: 7}},
		{"absent", domain.Ticket{PriorityKind: domain.ValueAbsent}},
		{"malformed", domain.Ticket{PriorityKind: domain.ValueMalformed, PriorityRaw: "2.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, raw := toNullPriority(tt.ticket)
			priority, kind, text := fromNullPriority(value, raw)
			assert.Equal(t, tt.ticket.Priority, priority)
			assert.Equal(t, tt.ticket.PriorityKind, kind)
			assert.Equal(t, tt.ticket.PriorityRaw, text)
		})
	}

	value, raw := toNullPriority(domain.Ticket{PriorityKind: domain.ValueAbsent})
	assert.False(t, value.Valid)
	assert.False(t, raw.Valid)
}
