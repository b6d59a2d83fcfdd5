package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var boardTemplate = template.Must(template.ParseFS(templateFS, "templates/board.html"))

// PageHandler serves the HTML board
type PageHandler struct {
	boardService ports.BoardService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(boardService ports.BoardService, errorHandler *ErrorHandler, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		boardService: boardService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "page"),
	}
}

// RegisterRoutes registers the page route
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleBoardPage)
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Groupings []selectOption
	Orderings []selectOption
	Board     *domain.BoardViewSnapshot
	Error     string
}

// HandleBoardPage handles GET /?grouping=&ordering=
func (h *PageHandler) HandleBoardPage(w http.ResponseWriter, r *http.Request) {
	opts, err := validation.ParseViewOptions(r, h.boardService.Defaults())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	data := pageData{}
	options := h.boardService.Options()
	for _, g := range options.Groupings {
		data.Groupings = append(data.Groupings, selectOption{Value: string(g), Label: g.Label(), Selected: g == opts.Grouping})
	}
	for _, o := range options.Orderings {
		data.Orderings = append(data.Orderings, selectOption{Value: string(o), Label: o.Label(), Selected: o == opts.Ordering})
	}

	status := http.StatusOK
	view, err := h.boardService.View(r.Context(), opts)
	switch {
	case err == nil:
		board := domain.NewBoardViewSnapshot(view)
		data.Board = &board
		w.Header().Set(RevisionHeader, view.Revision)
	case errors.Is(err, apperrors.ErrSnapshotUnavailable):
		status = http.StatusServiceUnavailable
		data.Error = "No ticket data is available yet."
	default:
		h.errorHandler.Handle(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := boardTemplate.Execute(&buf, data); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
