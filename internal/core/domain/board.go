package domain

import "time"

// Column is one rendered group: a header label and its ordered cards.
type Column struct {
	Key     GroupKey
	Label   string
	Tickets []Ticket
}

// BoardView is the grouped-and-ordered board for one pair of options.
type BoardView struct {
	Options     ViewOptions
	Revision    string
	FetchedAt   time.Time
	Columns     []Column
	TicketCount int
}

// BuildBoard runs both stages over a snapshot: group, then order, then label.
// It is recomputed from scratch on every call.
func BuildBoard(snapshot *Snapshot, opts ViewOptions, orderer Orderer) (*BoardView, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	grouped, err := GroupTickets(snapshot.Tickets, snapshot.Users, opts.Grouping)
	if err != nil {
		return nil, err
	}

	ordered, err := orderer.Order(grouped, opts.Ordering)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(ordered))
	for _, group := range ordered {
		columns = append(columns, Column{
			Key:     group.Key,
			Label:   group.Key.Label(),
			Tickets: group.Tickets,
		})
	}

	return &BoardView{
		Options:     opts,
		Revision:    snapshot.Revision,
		FetchedAt:   snapshot.FetchedAt,
		Columns:     columns,
		TicketCount: ordered.TicketCount(),
	}, nil
}
