package models

// Message lifecycle event types
const (
	MessageCreated = "message_created"
	MessageRead    = "message_read"
)

// MessageEvent is published to Kafka on every message lifecycle transition.
type MessageEvent struct {
	EventID      string `json:"event_id"`      // EventID is a unique identifier for the event.
	Type         string `json:"type"`          // Type is MessageCreated or MessageRead.
	MessageID    int64  `json:"message_id"`    // MessageID identifies the message.
	FromUsername string `json:"from_username"` // FromUsername is the sender of the message.
	ToUsername   string `json:"to_username"`   // ToUsername is the recipient of the message.
	Timestamp    int64  `json:"timestamp"`     // Timestamp is the Unix timestamp (in seconds) of the transition.
}
