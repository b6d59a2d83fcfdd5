package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// RevisionHeader carries the revision of the snapshot a response was built from.
const RevisionHeader = "X-Board-Revision"

// refreshTimeout bounds a refresh triggered over HTTP.
const refreshTimeout = 30 * time.Second

// BoardHandler handles HTTP requests for the ticket board
type BoardHandler struct {
	boardService  ports.BoardService
	refreshGuards []func(http.Handler) http.Handler
	wsHandler     http.Handler
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewBoardHandler creates a new board handler. refreshGuards wrap the refresh
// endpoint only; wsHandler may be nil.
func NewBoardHandler(
	boardService ports.BoardService,
	refreshGuards []func(http.Handler) http.Handler,
	wsHandler http.Handler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *BoardHandler {
	return &BoardHandler{
		boardService:  boardService,
		refreshGuards: refreshGuards,
		wsHandler:     wsHandler,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "board"),
	}
}

// RegisterRoutes sets up the routing for all board endpoints.
func (h *BoardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetBoard)
	r.Get("/options", h.HandleGetOptions)
	r.Get("/snapshot", h.HandleGetSnapshot)
	r.With(h.refreshGuards...).Post("/refresh", h.HandleRefresh)

	if h.wsHandler != nil {
		r.Get("/ws", h.wsHandler.ServeHTTP)
	}
}

// --- Response DTOs ---

// OptionsResponse lists the accepted view options
type OptionsResponse struct {
	Groupings []OptionChoice   `json:"groupings"`
	Orderings []OptionChoice   `json:"orderings"`
	Defaults  OptionsSelection `json:"defaults"`
}

// OptionChoice is one selectable value and its menu label
type OptionChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsSelection is one grouping and ordering pair
type OptionsSelection struct {
	Grouping string `json:"grouping"`
	Ordering string `json:"ordering"`
}

// RefreshResponse describes the snapshot a refresh produced
type RefreshResponse struct {
	Revision    string `json:"revision"`
	FetchedAt   string `json:"fetchedAt"`
	TicketCount int    `json:"ticketCount"`
	UserCount   int    `json:"userCount"`
}

// --- Handlers ---

// HandleGetBoard handles GET /board?grouping=&ordering=
func (h *BoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	opts, err := validation.ParseViewOptions(r, h.boardService.Defaults())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	view, err := h.boardService.View(r.Context(), opts)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	w.Header().Set(RevisionHeader, view.Revision)
	WriteJSON(w, http.StatusOK, domain.NewBoardViewSnapshot(view))
}

// HandleGetOptions handles GET /board/options
func (h *BoardHandler) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	options := h.boardService.Options()

	response := OptionsResponse{
		Groupings: make([]OptionChoice, 0, len(options.Groupings)),
		Orderings: make([]OptionChoice, 0, len(options.Orderings)),
		Defaults: OptionsSelection{
			Grouping: string(options.Defaults.Grouping),
			Ordering: string(options.Defaults.Ordering),
		},
	}
	for _, g := range options.Groupings {
		response.Groupings = append(response.Groupings, OptionChoice{Value: string(g), Label: g.Label()})
	}
	for _, o := range options.Orderings {
		response.Orderings = append(response.Orderings, OptionChoice{Value: string(o), Label: o.Label()})
	}

	WriteJSON(w, http.StatusOK, response)
}

// HandleGetSnapshot handles GET /board/snapshot
func (h *BoardHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.boardService.Current(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	w.Header().Set(RevisionHeader, snapshot.Revision)
	WriteJSON(w, http.StatusOK, domain.NewSnapshotDocument(snapshot))
}

// HandleRefresh handles POST /board/refresh
func (h *BoardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	snapshot, err := h.boardService.Refresh(ctx)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "board refreshed on request",
		"revision", snapshot.Revision,
		"tickets", len(snapshot.Tickets),
	)

	w.Header().Set(RevisionHeader, snapshot.Revision)
	WriteJSON(w, http.StatusOK, RefreshResponse{
		Revision:    snapshot.Revision,
		FetchedAt:   snapshot.FetchedAt.Format(time.RFC3339Nano),
		TicketCount: len(snapshot.Tickets),
		UserCount:   len(snapshot.Users),
	})
}
