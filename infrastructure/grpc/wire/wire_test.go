package wire

import (
	"room-relay/domain/chat"
	"room-relay/domain/event"
	"room-relay/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func envelope(t *testing.T, fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   chat.Command
	}{
		{"register as string", map[string]any{"event": "register", "payload": "u1"},
			chat.RegisterCommand{UserID: "u1"}},
		{"register as object", map[string]any{"event": "register", "payload": map[string]any{"userId": "u1"}},
			chat.RegisterCommand{UserID: "u1"}},
		{"create room", map[string]any{"event": "create_room", "payload": map[string]any{
			"roomId": "R1", "userIds": []any{"u1", "u2"}}},
			chat.CreateRoomCommand{RoomID: "R1", UserIDs: []string{"u1", "u2"}}},
		{"join room", map[string]any{"event": "join_room", "payload": map[string]any{"roomId": "R1", "userId": "u3"}},
			chat.JoinRoomCommand{RoomID: "R1", UserID: "u3"}},
		{"join by user", map[string]any{"event": "join_by_user", "payload": map[string]any{"userId": "u2", "currentUserId": "u1"}},
			chat.JoinByUserCommand{UserID: "u2", CurrentUserID: "u1"}},
		{"send message", map[string]any{"event": "send_message", "payload": map[string]any{
			"roomId": "R1", "userId": "u1", "message": "hi"}},
			chat.SendMessageCommand{RoomID: "R1", UserID: "u1", Body: "hi"}},
		{"get messages", map[string]any{"event": "get_messages", "payload": "R1"},
			chat.GetMessagesCommand{RoomID: "R1"}},
		{"get expiration", map[string]any{"event": "get_room_expiration", "payload": map[string]any{"roomId": "R1"}},
			chat.GetRoomExpirationCommand{RoomID: "R1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand(envelope(t, tt.fields))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCommand_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   error
	}{
		{"no event", map[string]any{"payload": "u1"}, errors.ErrInvalidPayload},
		{"numeric event", map[string]any{"event": 3.0}, errors.ErrInvalidPayload},
		{"unknown event", map[string]any{"event": "leave_room", "payload": "R1"}, errors.ErrUnknownEvent},
		{"string where object expected", map[string]any{"event": "join_room", "payload": "R1"}, errors.ErrInvalidPayload},
		{"number as room", map[string]any{"event": "get_messages", "payload": 12.0}, errors.ErrInvalidPayload},
		{"non string user ids", map[string]any{"event": "create_room", "payload": map[string]any{
			"roomId": "R1", "userIds": []any{"u1", 2.0}}}, errors.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand(envelope(t, tt.fields))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeCommand_Is_Read_Back(t *testing.T) {
	commands := []chat.Command{
		chat.RegisterCommand{UserID: "u1"},
		chat.CreateRoomCommand{RoomID: "R1", UserIDs: []string{"u1", "u2"}},
		chat.JoinRoomCommand{RoomID: "R1", UserID: "u1"},
		chat.JoinByUserCommand{UserID: "u2", CurrentUserID: "u1"},
		chat.SendMessageCommand{RoomID: "R1", UserID: "u1", Body: ""},
		chat.GetMessagesCommand{RoomID: "R1"},
		chat.GetRoomExpirationCommand{RoomID: "R1"},
	}
	for _, cmd := range commands {
		s, err := EncodeCommand(cmd)
		require.NoError(t, err)
		got, err := DecodeCommand(s)
		require.NoError(t, err)
		require.Equal(t, cmd, got)
	}
}

func TestEncodeEvent(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	hi := event.NewMessage{ID: "m1", RoomID: "R1", UserID: "u1", Message: "hi", Timestamp: at}

	tests := []struct {
		evt  event.Event
		want map[string]any
	}{
		{event.New(event.RoomCreatedType, event.RoomSummary{ID: "R1", UserCount: 2}),
			map[string]any{"event": "room_created", "payload": map[string]any{"id": "R1", "userCount": 2.0}}},
		{event.New(event.RoomDeletedType, event.RoomDeleted{RoomID: "R1"}),
			map[string]any{"event": "room_deleted", "payload": "R1"}},
		{event.New(event.NewMessageType, hi),
			map[string]any{"event": "new_message", "payload": map[string]any{
				"id": "m1", "roomId": "R1", "userId": "u1", "message": "hi", "timestamp": "2026-03-01T10:00:00Z"}}},
		{event.New(event.RoomExpirationType, event.RoomExpiration{RoomID: "R1", MinutesLeft: 4}),
			map[string]any{"event": "room_expiration", "payload": 4.0, "roomId": "R1"}},
		{event.New(event.RoomMessagesType, event.RoomMessages{RoomID: "R1", Messages: []event.NewMessage{hi}}),
			map[string]any{"event": "room_messages", "payload": map[string]any{"roomId": "R1", "messages": []any{
				map[string]any{"id": "m1", "roomId": "R1", "userId": "u1", "message": "hi", "timestamp": "2026-03-01T10:00:00Z"},
			}}}},
		{event.New(event.UserRoomsType, event.UserRooms{}),
			map[string]any{"event": "user_rooms", "payload": []any{}}},
		{event.New(event.ErrorType, event.Failure{Kind: "not_found", Message: "room not found"}),
			map[string]any{"event": "error", "payload": map[string]any{"kind": "not_found", "message": "room not found"}}},
	}

	for _, tt := range tests {
		s, err := EncodeEvent(tt.evt)
		req.NoError(err)
		req.Equal(tt.want, s.AsMap(), tt.evt.Type)
	}

	_, err := EncodeEvent(event.New(event.ErrorType, "plain string"))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}
