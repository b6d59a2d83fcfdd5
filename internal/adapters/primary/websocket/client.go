package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lorrc/ticket-board/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outbound queue length per client.
	sendBuffer = 16
)

// Client message types.
const (
	MessageSetOptions = "SET_OPTIONS"
	MessagePing       = "PING"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	ID  string
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// options are the grouping and ordering this client is viewing.
	options domain.ViewOptions

	// closeOnce ensures the Send channel is only closed once
	closeOnce sync.Once

	// mu protects options
	mu sync.RWMutex

	logger *slog.Logger
}

// NewClient creates a new WebSocket client viewing the board with opts.
func NewClient(hub *Hub, conn *websocket.Conn, opts domain.ViewOptions, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan domain.Event, sendBuffer),
		options: opts,
		logger:  logger.With("client_id", id),
	}
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// Options returns the client's current view options.
func (c *Client) Options() domain.ViewOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options
}

func (c *Client) setOptions(opts domain.ViewOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = opts
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SetOptionsPayload changes the board a client is viewing. Empty fields
// keep the current choice.
type SetOptionsPayload struct {
	Grouping string `json:"grouping"`
	Ordering string `json:"ordering"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		c.reply(errorEvent("BAD_MESSAGE", "message is not valid JSON"))
		return
	}

	switch msg.Type {
	case MessageSetOptions:
		c.handleSetOptions(msg.Payload)

	case MessagePing:
		// Client-side keep-alive, respond with pong
		c.reply(domain.Event{Type: domain.EventPong})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) handleSetOptions(payload json.RawMessage) {
	var p SetOptionsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal options payload", "error", err)
		c.reply(errorEvent("BAD_MESSAGE", "invalid SET_OPTIONS payload"))
		return
	}

	opts, err := mergeOptions(c.Options(), p)
	if err != nil {
		c.reply(errorEvent("INVALID_VIEW_OPTIONS", err.Error()))
		return
	}

	c.setOptions(opts)
	c.logger.Debug("view options changed", "grouping", opts.Grouping, "ordering", opts.Ordering)
	c.Hub.request(c, nil)
}

func (c *Client) reply(event domain.Event) {
	c.Hub.request(c, &event)
}

func mergeOptions(current domain.ViewOptions, p SetOptionsPayload) (domain.ViewOptions, error) {
	if p.Grouping != "" {
		grouping, err := domain.ParseGrouping(p.Grouping)
		if err != nil {
			return current, err
		}
		current.Grouping = grouping
	}
	if p.Ordering != "" {
		ordering, err := domain.ParseOrdering(p.Ordering)
		if err != nil {
			return current, err
		}
		current.Ordering = ordering
	}
	return current, nil
}
