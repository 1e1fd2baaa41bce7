// Package chat contains core concepts of the relay.
// This file defines Message events and related rules.
// Messages are immutable once appended to a room log.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique even for messages created in the same instant
	RoomID    RoomID
	SenderID  string
	Body      string
	CreatedAt time.Time
}

func NewMessage(roomID RoomID, senderID, body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: at,
	}
}
