package chat

import (
	"room-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"Valid register", RegisterCommand{UserID: "u1"}, false},
		{"Missing user on register", RegisterCommand{}, true},
		{"Valid create", CreateRoomCommand{RoomID: "R1", UserIDs: []string{"u1", "u2"}}, false},
		{"Create without users", CreateRoomCommand{RoomID: "R1"}, true},
		{"Create with blank user", CreateRoomCommand{RoomID: "R1", UserIDs: []string{"u1", ""}}, true},
		{"Create without id", CreateRoomCommand{UserIDs: []string{"u1"}}, true},
		{"Room id too long", JoinRoomCommand{RoomID: RoomID(strings.Repeat("R", 65)), UserID: "u1"}, true},
		{"Valid join by user", JoinByUserCommand{UserID: "u2", CurrentUserID: "u1"}, false},
		{"Join by user without requester", JoinByUserCommand{UserID: "u2"}, true},
		{"Empty body is allowed", SendMessageCommand{RoomID: "R1", UserID: "u1"}, false},
		{"Get messages without room", GetMessagesCommand{}, true},
		{"Valid expiration", GetRoomExpirationCommand{RoomID: "R1"}, false},
		{"Nil command", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := Validate(tt.cmd)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidPayload)
			} else {
				req.NoError(err)
			}
		})
	}
}
