package domain

import (
	"encoding/json"
	"strconv"
)

// Priority is the urgency of a ticket as reported by the remote source.
// Values outside 0..4 are kept as-is so they can form their own group.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

var priorityNames = map[Priority]string{
	PriorityNone:   "No priority",
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

// Label returns the human-readable name of the priority.
func (p Priority) Label() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "Priority " + strconv.Itoa(int(p))
}

// ValueKind records how the upstream source reported a ticket field.
type ValueKind uint8

const (
	// ValuePresent is a value of the expected JSON type.
	ValuePresent ValueKind = iota
	// ValueAbsent is a missing field or an explicit null.
	ValueAbsent
	// ValueMalformed is a value of an unexpected JSON type. Its raw JSON
	// text is kept so it can still form a group of its own.
	ValueMalformed
)

func (k ValueKind) String() string {
	switch k {
	case ValueAbsent:
		return "absent"
	case ValueMalformed:
		return "malformed"
	}
	return "present"
}

// Ticket is a unit of work on the board. Tickets are read-only inputs:
// nothing in this module mutates them after decoding.
type Ticket struct {
	ID    string
	Title string
	// Status holds the raw JSON text when StatusKind is ValueMalformed.
	Status     string
	StatusKind ValueKind
	// Priority is only meaningful when PriorityKind is ValuePresent.
	Priority     Priority
	PriorityKind ValueKind
	// PriorityRaw is the raw JSON text of a malformed priority.
	PriorityRaw string
	UserID      *string
	Tags        []string
}

// PriorityLabel returns the display name of the ticket's priority.
func (t Ticket) PriorityLabel() string {
	return priorityLabel(t.PriorityKind, t.Priority, t.PriorityRaw)
}

func priorityLabel(kind ValueKind, p Priority, raw string) string {
	switch kind {
	case ValueAbsent:
		return "Unknown priority"
	case ValueMalformed:
		return "Priority " + displayRaw(raw)
	}
	return p.Label()
}

// displayRaw unquotes a raw JSON string and leaves any other value as written.
func displayRaw(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return raw
}

// User is a person tickets may be assigned to.
type User struct {
	ID        string
	Name      string
	Available bool
}
