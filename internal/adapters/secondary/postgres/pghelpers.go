package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lorrc/ticket-board/internal/core/domain"
)

// toNullText converts an optional string to a pgtype.Text.
// A nil pointer is stored as NULL.
func toNullText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// fromNullText converts a pgtype.Text back to an optional string.
func fromNullText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// toNullStatus stores an absent status as NULL. A malformed status keeps
// its raw JSON text and sets the flag.
func toNullStatus(t domain.Ticket) (pgtype.Text, bool) {
	if t.StatusKind == domain.ValueAbsent {
		return pgtype.Text{Valid: false}, false
	}
	return pgtype.Text{String: t.Status, Valid: true}, t.StatusKind == domain.ValueMalformed
}

// fromNullStatus is the inverse of toNullStatus.
func fromNullStatus(v pgtype.Text, malformed bool) (string, domain.ValueKind) {
	switch {
	case !v.Valid:
		return "", domain.ValueAbsent
	case malformed:
		return v.String, domain.ValueMalformed
	}
	return v.String, domain.ValuePresent
}

// toNullPriority splits a priority over the integer and raw text columns.
// An absent priority leaves both NULL.
func toNullPriority(t domain.Ticket) (pgtype.Int4, pgtype.Text) {
	switch t.PriorityKind {
	case domain.ValueAbsent:
		return pgtype.Int4{Valid: false}, pgtype.Text{Valid: false}
	case domain.ValueMalformed:
		return pgtype.Int4{Valid: false}, pgtype.Text{String: t.PriorityRaw, Valid: true}
	}
	return pgtype.Int4{Int32: int32(t.Priority), Valid: true}, pgtype.Text{Valid: false}
}

// fromNullPriority is the inverse of toNullPriority.
func fromNullPriority(v pgtype.Int4, raw pgtype.Text) (domain.Priority, domain.ValueKind, string) {
	switch {
	case raw.Valid:
		return 0, domain.ValueMalformed, raw.String
	case !v.Valid:
		return 0, domain.ValueAbsent, ""
	}
	return domain.Priority(v.Int32), domain.ValuePresent, ""
}
