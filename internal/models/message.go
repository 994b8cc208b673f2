package models

import "time"

// Message represents a message row in the database
type Message struct {
	ID           int64      `json:"id" db:"id"`                       // System-assigned identifier
	FromUsername string     `json:"from_username" db:"from_username"` // Sender
	ToUsername   string     `json:"to_username" db:"to_username"`     // Recipient
	Body         string     `json:"body" db:"body"`                   // Message text
	SentAt       time.Time  `json:"sent_at" db:"sent_at"`             // Set by the store on insert
	ReadAt       *time.Time `json:"read_at" db:"read_at"`             // Nil while unread, set at most once
}

// IsRead reports whether the message reached the terminal Read state.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// MessageDetail is a message with both endpoint profiles
// swagger:model MessageDetail
type MessageDetail struct {
	ID       int64      `json:"id" db:"id"`
	Body     string     `json:"body" db:"body"`
	SentAt   time.Time  `json:"sent_at" db:"sent_at"`
	ReadAt   *time.Time `json:"read_at" db:"read_at"`
	FromUser UserBasic  `json:"from_user" db:"from_user"`
	ToUser   UserBasic  `json:"to_user" db:"to_user"`
}

// IsParticipant reports whether username is the sender or the recipient.
func (m *MessageDetail) IsParticipant(username string) bool {
	return m.FromUser.Username == username || m.ToUser.Username == username
}

// Message returns the plain message row of the detail view.
func (m *MessageDetail) Message() *Message {
	return &Message{
		ID:           m.ID,
		FromUsername: m.FromUser.Username,
		ToUsername:   m.ToUser.Username,
		Body:         m.Body,
		SentAt:       m.SentAt,
		ReadAt:       m.ReadAt,
	}
}

// SentMessage is an outbound message enriched with its own recipient profile
// swagger:model SentMessage
type SentMessage struct {
	ID     int64      `json:"id" db:"id"`
	ToUser UserBasic  `json:"to_user" db:"to_user"`
	Body   string     `json:"body" db:"body"`
	SentAt time.Time  `json:"sent_at" db:"sent_at"`
	ReadAt *time.Time `json:"read_at" db:"read_at"`
}

// ReceivedMessage is an inbound message enriched with its own sender profile
// swagger:model ReceivedMessage
type ReceivedMessage struct {
	ID       int64      `json:"id" db:"id"`
	FromUser UserBasic  `json:"from_user" db:"from_user"`
	Body     string     `json:"body" db:"body"`
	SentAt   time.Time  `json:"sent_at" db:"sent_at"`
	ReadAt   *time.Time `json:"read_at" db:"read_at"`
}
