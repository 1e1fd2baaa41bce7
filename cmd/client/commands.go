package main

import (
	"fmt"
	"room-relay/domain/chat"
	"strings"

	"github.com/samber/lo"
)

const usage = `/create <room> <user,user...>   create a room
/join <room>                    join a room
/dm <user>                      open a direct room with a user
/send <room> <message>          send a message
/history <room>                 show the messages of a room
/ttl <room>                     minutes before a room expires
/rooms                          list your rooms
/quit`

var errQuit = fmt.Errorf("quit")

// parseLine turns one line typed by userID into a relay command.
func parseLine(userID, line string) (chat.Command, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch verb {
	case "/create":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: /create <room> <user,user...>")
		}
		members := lo.Uniq(append([]string{userID}, lo.Compact(strings.Split(args[1], ","))...))
		return chat.CreateRoomCommand{RoomID: chat.RoomID(args[0]), UserIDs: members}, nil
	case "/join":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: /join <room>")
		}
		return chat.JoinRoomCommand{RoomID: chat.RoomID(args[0]), UserID: userID}, nil
	case "/dm":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: /dm <user>")
		}
		return chat.JoinByUserCommand{UserID: args[0], CurrentUserID: userID}, nil
	case "/send":
		roomID, body, ok := strings.Cut(rest, " ")
		if !ok || roomID == "" {
			return nil, fmt.Errorf("usage: /send <room> <message>")
		}
		return chat.SendMessageCommand{RoomID: chat.RoomID(roomID), UserID: userID, Body: body}, nil
	case "/history":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: /history <room>")
		}
		return chat.GetMessagesCommand{RoomID: chat.RoomID(args[0])}, nil
	case "/ttl":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: /ttl <room>")
		}
		return chat.GetRoomExpirationCommand{RoomID: chat.RoomID(args[0])}, nil
	case "/rooms":
		return chat.RegisterCommand{UserID: userID}, nil
	case "/quit":
		return nil, errQuit
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", verb, usage)
	}
}
