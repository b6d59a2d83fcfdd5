// Package terminal draws a board as side-by-side columns for a terminal.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lorrc/ticket-board/internal/core/domain"
)

const (
	defaultColumnWidth = 32
	defaultWidth       = 120
	columnGap          = 2
)

// Renderer lays out board columns. Columns wrap onto a new band when they
// do not fit the terminal width.
type Renderer struct {
	renderer    *lipgloss.Renderer
	width       int
	columnWidth int

	header lipgloss.Style
	count  lipgloss.Style
	card   lipgloss.Style
	id     lipgloss.Style
	title  lipgloss.Style
	tag    lipgloss.Style
	meta   lipgloss.Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the total width available. Values below one column are ignored.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width >= r.columnWidth {
			r.width = width
		}
	}
}

// WithColumnWidth sets the width of each column, border included.
func WithColumnWidth(width int) Option {
	return func(r *Renderer) {
		if width >= 12 {
			r.columnWidth = width
		}
	}
}

// NewRenderer creates a renderer whose color profile follows w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	lr := lipgloss.NewRenderer(w)
	r := &Renderer{
		renderer:    lr,
		width:       defaultWidth,
		columnWidth: defaultColumnWidth,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.header = lr.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"})
	r.count = lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#7D8590"})
	r.card = lr.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"}).
		Padding(0, 1).
		Width(r.columnWidth - 2)
	r.id = lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#7D8590"})
	r.title = lr.NewStyle()
	r.tag = lr.NewStyle().Faint(true)
	r.meta = lr.NewStyle().Faint(true)
	return r
}

// Render draws the whole board.
func (r *Renderer) Render(view *domain.BoardView) string {
	var b strings.Builder

	b.WriteString(r.meta.Render(fmt.Sprintf("grouping: %s · ordering: %s · %d tickets · revision %s",
		view.Options.Grouping.Label(), view.Options.Ordering.Label(), view.TicketCount, shortRevision(view.Revision))))
	b.WriteString("\n\n")

	if len(view.Columns) == 0 {
		b.WriteString(r.meta.Render("No tickets."))
		b.WriteString("\n")
		return b.String()
	}

	perBand := max(1, (r.width+columnGap)/(r.columnWidth+columnGap))
	gap := strings.Repeat(" ", columnGap)

	for start := 0; start < len(view.Columns); start += perBand {
		end := min(start+perBand, len(view.Columns))

		blocks := make([]string, 0, 2*(end-start))
		for i, column := range view.Columns[start:end] {
			if i > 0 {
				blocks = append(blocks, gap)
			}
			blocks = append(blocks, r.renderColumn(column))
		}

		if start > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
		b.WriteString("\n")
	}

	return b.String()
}

func (r *Renderer) renderColumn(column domain.Column) string {
	header := r.header.Render(truncate(column.Label, r.columnWidth-6)) +
		" " + r.count.Render(fmt.Sprintf("%d", len(column.Tickets)))

	parts := make([]string, 0, len(column.Tickets)+1)
	parts = append(parts, r.renderer.NewStyle().Width(r.columnWidth).Render(header))
	for _, ticket := range column.Tickets {
		parts = append(parts, r.renderCard(ticket))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r *Renderer) renderCard(ticket domain.Ticket) string {
	inner := r.columnWidth - 4

	idLine := r.id.Render(ticket.ID) + "  " + r.priorityStyle(ticket).Render(ticket.PriorityLabel())
	lines := []string{
		idLine,
		r.title.Render(truncate(ticket.Title, inner)),
	}
	if len(ticket.Tags) > 0 {
		lines = append(lines, r.tag.Render(truncate(strings.Join(ticket.Tags, ", "), inner)))
	}

	return r.card.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) priorityStyle(ticket domain.Ticket) lipgloss.Style {
	style := r.renderer.NewStyle()
	if ticket.PriorityKind != domain.ValuePresent {
		return style.Faint(true)
	}
	switch ticket.Priority {
	case domain.PriorityUrgent:
		return style.Bold(true).Foreground(lipgloss.Color("#F85149"))
	case domain.PriorityHigh:
		return style.Foreground(lipgloss.Color("#DB6D28"))
	case domain.PriorityMedium:
		return style.Foreground(lipgloss.Color("#D29922"))
	case domain.PriorityLow:
		return style.Foreground(lipgloss.Color("#3FB950"))
	}
	return style.Faint(true)
}

// truncate shortens s to fit width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func shortRevision(revision string) string {
	if len(revision) > 12 {
		return revision[:12]
	}
	return revision
}
