package chat

import "time"

// EventType identifies a server-to-client realtime frame.
type EventType string

const (
	// TypeNewMessage carries a persisted, populated message to its sender and receiver.
	TypeNewMessage EventType = "newMessage"

	// TypePresence announces that a user came online or went offline.
	TypePresence EventType = "presence"
)

// Event is the JSON frame written to a realtime connection.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp int64     `json:"timestamp"`
}

// PresencePayload is the payload of a TypePresence event.
type PresencePayload struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// NewEvent stamps payload with the current time in milliseconds.
func NewEvent(t EventType, payload any) Event {
	return Event{
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}
