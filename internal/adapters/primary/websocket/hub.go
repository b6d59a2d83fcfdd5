package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// viewTimeout bounds a single board computation triggered by the hub.
const viewTimeout = 5 * time.Second

// clientRequest asks the hub to deliver something to one client. A nil
// event means "send a fresh board view".
type clientRequest struct {
	client *Client
	event  *domain.Event
}

// Hub maintains the set of active Clients and pushes board views to them.
type Hub struct {
	// clients holds every registered connection
	clients map[*Client]bool

	// viewer renders a board for a client's options
	viewer ports.BoardViewer

	// Broadcast channel for events
	broadcast chan domain.Event

	// Per-client requests from read pumps
	requests chan clientRequest

	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects clients for readers outside the run loop
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		requests:   make(chan clientRequest, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// AttachViewer sets the board renderer. It must be called before Run.
func (h *Hub) AttachViewer(viewer ports.BoardViewer) {
	h.viewer = viewer
}

// Broadcast sends an event to the hub's internal broadcast channel.
// This method implements the ports.EventBroadcaster interface.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"revision", event.Revision,
		)
	}
	return nil
}

// Register adds a client; it receives its first board view right away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.CloseSend()
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) request(client *Client, event *domain.Event) {
	select {
	case h.requests <- clientRequest{client: client, event: event}:
	case <-h.done:
	}
}

// Run starts the hub's event loop until ctx is cancelled. This MUST be run
// as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.closeAll()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.requests:
			h.handleRequest(req)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// registerClient adds a client to the hub and sends it the current board
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		"client_id", client.ID,
		"total_connections", total,
	)

	h.sendView(client)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if !ok {
		return
	}
	client.CloseSend()

	h.logger.Info("client unregistered", "client_id", client.ID)
}

func (h *Hub) handleRequest(req clientRequest) {
	h.mu.RLock()
	registered := h.clients[req.client]
	h.mu.RUnlock()
	if !registered {
		return
	}

	if req.event != nil {
		h.deliver(req.client, *req.event)
		return
	}
	h.sendView(req.client)
}

// broadcastEvent fans a snapshot update out as one board view per client.
// Clients sharing options share one computation.
func (h *Hub) broadcastEvent(event domain.Event) {
	clients := h.snapshotClients()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"revision", event.Revision,
		"client_count", len(clients),
	)

	if event.Type != domain.EventSnapshotUpdated {
		for _, client := range clients {
			h.deliver(client, event)
		}
		return
	}

	views := make(map[domain.ViewOptions]domain.Event)
	for _, client := range clients {
		opts := client.Options()
		view, ok := views[opts]
		if !ok {
			view = h.renderView(opts)
			views[opts] = view
		}
		h.deliver(client, view)
	}
}

func (h *Hub) sendView(client *Client) {
	h.deliver(client, h.renderView(client.Options()))
}

// renderView computes the board event for one set of options.
func (h *Hub) renderView(opts domain.ViewOptions) domain.Event {
	if h.viewer == nil {
		return errorEvent("NO_VIEWER", "board is not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), viewTimeout)
	defer cancel()

	view, err := h.viewer.View(ctx, opts)
	if err != nil {
		h.logger.Warn("failed to render board view", "grouping", opts.Grouping, "ordering", opts.Ordering, "error", err)
		return errorEvent("VIEW_FAILED", err.Error())
	}

	return domain.Event{
		Type:     domain.EventBoardView,
		Payload:  domain.NewBoardViewSnapshot(view),
		Revision: view.Revision,
	}
}

// deliver queues an event; a client whose buffer is full is dropped.
func (h *Hub) deliver(client *Client, event domain.Event) {
	select {
	case client.Send <- event:
	default:
		h.logger.Warn("client send buffer full, unregistering", "client_id", client.ID)
		h.unregisterClient(client)
	}
}

func (h *Hub) snapshotClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) closeAll() {
	for _, client := range h.snapshotClients() {
		h.unregisterClient(client)
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ErrorPayload is sent with ERROR events.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorEvent(code, message string) domain.Event {
	return domain.Event{
		Type:    domain.EventError,
		Payload: ErrorPayload{Code: code, Message: message},
	}
}
