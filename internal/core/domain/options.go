package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Grouping is the dimension used to partition tickets into columns.
type Grouping string

const (
	GroupByStatus   Grouping = "status"
	GroupByUser     Grouping = "user"
	GroupByPriority Grouping = "priority"
)

// Ordering is the criterion used to sort tickets inside a column.
type Ordering string

const (
	OrderByPriority Ordering = "priority"
	OrderByTitle    Ordering = "title"
)

// Defaults match the board's initial selection.
const (
	DefaultGrouping = GroupByStatus
	DefaultOrdering = OrderByPriority
)

// Groupings lists every supported grouping in menu order.
func Groupings() []Grouping {
	return []Grouping{GroupByStatus, GroupByUser, GroupByPriority}
}

// Orderings lists every supported ordering in menu order.
func Orderings() []Ordering {
	return []Ordering{OrderByPriority, OrderByTitle}
}

// IsValid reports whether g is a supported grouping.
func (g Grouping) IsValid() bool {
	switch g {
	case GroupByStatus, GroupByUser, GroupByPriority:
		return true
	}
	return false
}

// IsValid reports whether o is a supported ordering.
func (o Ordering) IsValid() bool {
	switch o {
	case OrderByPriority, OrderByTitle:
		return true
	}
	return false
}

// ParseGrouping converts user input into a Grouping. Matching is case-insensitive.
func ParseGrouping(value string) (Grouping, error) {
	g := Grouping(strings.ToLower(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidGrouping, value)
	}
	return g, nil
}

// ParseOrdering converts user input into an Ordering. Matching is case-insensitive.
func ParseOrdering(value string) (Ordering, error) {
	o := Ordering(strings.ToLower(strings.TrimSpace(value)))
	if !o.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidOrdering, value)
	}
	return o, nil
}

// GroupingNames returns the supported groupings as strings.
func GroupingNames() []string {
	out := make([]string, 0, 3)
	for _, g := range Groupings() {
		out = append(out, string(g))
	}
	return out
}

// OrderingNames returns the supported orderings as strings.
func OrderingNames() []string {
	out := make([]string, 0, 2)
	for _, o := range Orderings() {
		out = append(out, string(o))
	}
	return out
}

// ViewOptions are the two user-selected board controls.
type ViewOptions struct {
	Grouping Grouping
	Ordering Ordering
}

// Validate fails fast on options outside the supported sets.
func (o ViewOptions) Validate() error {
	if !o.Grouping.IsValid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidGrouping, o.Grouping)
	}
	if !o.Ordering.IsValid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidOrdering, o.Ordering)
	}
	return nil
}

// Label is the menu text for g.
func (g Grouping) Label() string {
	switch g {
	case GroupByStatus:
		return "Status"
	case GroupByUser:
		return "User"
	case GroupByPriority:
		return "Priority"
	}
	return string(g)
}

// Label is the menu text for o.
func (o Ordering) Label() string {
	switch o {
	case OrderByPriority:
		return "Priority"
	case OrderByTitle:
		return "Title"
	}
	return string(o)
}
