package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventSnapshotUpdated EventType = "SNAPSHOT_UPDATED"
	EventBoardView       EventType = "BOARD_VIEW"
	EventError           EventType = "ERROR"
	EventPong            EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType   `json:"type"`
	Payload  interface{} `json:"payload,omitempty"`
	Revision string      `json:"revision,omitempty"`
}
