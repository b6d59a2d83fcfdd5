package domain

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// DefaultLocale is used for title collation when none is configured.
var DefaultLocale = language.English

// ParseLocale parses a BCP 47 tag such as "en", "de-CH" or "sv".
func ParseLocale(value string) (language.Tag, error) {
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidLocale, value, err)
	}
	return tag, nil
}

// Orderer sorts the contents of each group.
type Orderer struct {
	locale language.Tag
}

// NewOrderer returns an Orderer that collates titles for the given locale.
func NewOrderer(locale language.Tag) Orderer {
	return Orderer{locale: locale}
}

// Locale returns the collation locale.
func (o Orderer) Locale() language.Tag {
	return o.locale
}

// Order returns a new Groups value with every group's tickets sorted by the
// criterion. Keys, key order and group membership are unchanged and the
// input slices are left untouched. Ties keep their input order.
func (o Orderer) Order(groups Groups, by Ordering) (Groups, error) {
	var compare func(a, b Ticket) int

	switch by {
	case OrderByPriority:
		// Highest first; absent and then malformed priorities go last.
		compare = func(a, b Ticket) int {
			if c := cmp.Compare(a.PriorityKind, b.PriorityKind); c != 0 {
				return c
			}
			return cmp.Compare(b.Priority, a.Priority)
		}
	case OrderByTitle:
		// collate.Collator keeps per-call buffers, so each Order call gets its own.
		collator := collate.New(o.locale)
		compare = func(a, b Ticket) int {
			return collator.CompareString(a.Title, b.Title)
		}
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidOrdering, by)
	}

	ordered := make(Groups, len(groups))
	for i, group := range groups {
		tickets := slices.Clone(group.Tickets)
		slices.SortStableFunc(tickets, compare)
		ordered[i] = Group{Key: group.Key, Tickets: tickets}
	}
	return ordered, nil
}

// OrderGroups orders groups using DefaultLocale for titles.
func OrderGroups(groups Groups, by Ordering) (Groups, error) {
	return NewOrderer(DefaultLocale).Order(groups, by)
}
