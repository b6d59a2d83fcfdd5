package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// UnassignedLabel is the group name for tickets whose owner cannot be resolved.
const UnassignedLabel = "Unassigned"

// GroupKey identifies a column. Identity and presentation are separate:
// two priority keys are equal only when their raw values are equal, even
// if their labels would read the same. Kind keeps absent and malformed
// values apart from well-formed ones with the same text.
type GroupKey struct {
	Dimension Grouping
	Kind      ValueKind
	// Name is the status, the resolved user name, or the raw JSON of a
	// malformed priority.
	Name string
	// Priority is the ticket priority. Only set for well-formed priority keys.
	Priority Priority
}

// NoStatusLabel is the column header for tickets without a status.
const NoStatusLabel = "No status"

// Label is the display text for the column header.
func (k GroupKey) Label() string {
	if k.Dimension == GroupByPriority {
		return priorityLabel(k.Kind, k.Priority, k.Name)
	}
	switch k.Kind {
	case ValueAbsent:
		return NoStatusLabel
	case ValueMalformed:
		return displayRaw(k.Name)
	}
	return k.Name
}

// String returns the raw key value: the status, user name or priority
// digits. Absent values are empty; pair it with Kind to tell them apart.
func (k GroupKey) String() string {
	if k.Dimension == GroupByPriority && k.Kind == ValuePresent {
		return strconv.Itoa(int(k.Priority))
	}
	return k.Name
}

// Group is one bucket of tickets sharing a key.
type Group struct {
	Key     GroupKey
	Tickets []Ticket
}

// Groups maps keys to ticket sequences. Keys are unique and iteration order
// is the column order.
type Groups []Group

// Lookup returns the tickets stored under key.
func (g Groups) Lookup(key GroupKey) ([]Ticket, bool) {
	for _, group := range g {
		if group.Key == key {
			return group.Tickets, true
		}
	}
	return nil, false
}

// TicketCount returns the number of tickets across all groups.
func (g Groups) TicketCount() int {
	n := 0
	for _, group := range g {
		n += len(group.Tickets)
	}
	return n
}

// GroupTickets partitions tickets by the given dimension. Tickets keep their
// input order inside each group. Status and user groups appear in order of
// first occurrence. Priority groups ascend by priority, followed by the
// absent group and then malformed groups in order of first occurrence.
//
// An unsupported dimension is a caller error and is rejected before any
// ticket is looked at. Odd data is never rejected: an empty, missing or
// non-string status and a missing, out-of-range or non-integer priority
// each form their own group, and an owner that does not resolve lands in
// UnassignedLabel.
func GroupTickets(tickets []Ticket, users []User, by Grouping) (Groups, error) {
	var keyOf func(Ticket) GroupKey

	switch by {
	case GroupByStatus:
		keyOf = func(t Ticket) GroupKey {
			return GroupKey{Dimension: by, Kind: t.StatusKind, Name: t.Status}
		}
	case GroupByPriority:
		keyOf = func(t Ticket) GroupKey {
			switch t.PriorityKind {
			case ValueAbsent:
				return GroupKey{Dimension: by, Kind: ValueAbsent}
			case ValueMalformed:
				return GroupKey{Dimension: by, Kind: ValueMalformed, Name: t.PriorityRaw}
			}
			return GroupKey{Dimension: by, Priority: t.Priority}
		}
	case GroupByUser:
		names := make(map[string]string, len(users))
		for _, u := range users {
			// First match wins when the source repeats an ID.
			if _, seen := names[u.ID]; !seen {
				names[u.ID] = u.Name
			}
		}
		keyOf = func(t Ticket) GroupKey {
			if t.UserID != nil {
				if name, ok := names[*t.UserID]; ok {
					return GroupKey{Dimension: by, Name: name}
				}
			}
			return GroupKey{Dimension: by, Name: UnassignedLabel}
		}
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidGrouping, by)
	}

	index := make(map[GroupKey]int)
	groups := Groups{}
	for _, t := range tickets {
		key := keyOf(t)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}

	if by == GroupByPriority {
		slices.SortStableFunc(groups, func(a, b Group) int {
			if c := cmp.Compare(a.Key.Kind, b.Key.Kind); c != 0 {
				return c
			}
			return cmp.Compare(a.Key.Priority, b.Key.Priority)
		})
	}

	return groups, nil
}
