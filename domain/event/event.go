package event

import (
	"room-relay/domain/chat"
	"time"
)

type Type string

const (
	RoomCreatedType    Type = "room_created"
	RoomJoinedType     Type = "room_joined"
	RoomDeletedType    Type = "room_deleted"
	NewMessageType     Type = "new_message"
	RoomExpirationType Type = "room_expiration"
	RoomMessagesType   Type = "room_messages"
	UserRoomsType      Type = "user_rooms"
	ErrorType          Type = "error"
)

// Event is an outbound notification. Payload holds one of the payload
// types below, matching Type.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type RoomSummary struct {
	ID        chat.RoomID
	UserCount int
}

type RoomDeleted struct {
	RoomID chat.RoomID
}

type NewMessage struct {
	ID        string
	RoomID    chat.RoomID
	UserID    string
	Message   string
	Timestamp time.Time
}

type RoomExpiration struct {
	RoomID      chat.RoomID
	MinutesLeft int
}

type RoomMessages struct {
	RoomID   chat.RoomID
	Messages []NewMessage
}

type UserRooms struct {
	Rooms []RoomSummary
}

// Failure reports a rejected request to the client that sent it.
type Failure struct {
	Kind    string
	Message string
}

func New(t Type, payload any) Event {
	return NewAt(t, payload, time.Now())
}

// NewAt stamps the event with at, for callers that own a clock.
func NewAt(t Type, payload any, at time.Time) Event {
	return Event{Type: t, CreatedAt: at.UTC(), Payload: payload}
}

func FromSummary(s chat.Summary) RoomSummary {
	return RoomSummary{ID: s.ID, UserCount: s.UserCount}
}

func FromMessage(m chat.Message) NewMessage {
	return NewMessage{
		ID:        m.ID.String(),
		RoomID:    m.RoomID,
		UserID:    m.SenderID,
		Message:   m.Body,
		Timestamp: m.CreatedAt,
	}
}

// MinutesLeft rounds a remaining duration up to whole minutes, never
// below zero.
func MinutesLeft(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	minutes := remaining / time.Minute
	if remaining%time.Minute != 0 {
		minutes++
	}
	return int(minutes)
}
