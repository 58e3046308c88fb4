package chat

import "time"

// Snapshot is a read-only copy of a session handed to renderers.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType names a change pushed to live subscribers.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventMessage  EventType = "message"
	EventPending  EventType = "pending"
	EventCleared  EventType = "cleared"
)

// Event describes one session change.
type Event struct {
	Type      EventType `json:"event"`
	SessionID string    `json:"sessionId"`
	Message   *Message  `json:"message,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Pending   bool      `json:"pending"`
}
