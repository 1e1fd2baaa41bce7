// Package wire maps commands and events to the envelope carried on the
// relay stream: {"event": name, "payload": value, "roomId"?: id}, encoded
// as a google.protobuf.Struct.
package wire

import (
	"fmt"
	"room-relay/domain/chat"
	"room-relay/domain/event"
	"room-relay/errors"
	"time"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldEvent   = "event"
	fieldPayload = "payload"
	fieldRoomID  = "roomId"
)

// EncodeEvent renders an outbound event.
func EncodeEvent(evt event.Event) (*structpb.Struct, error) {
	envelope := map[string]any{fieldEvent: string(evt.Type)}

	switch p := evt.Payload.(type) {
	case event.RoomSummary:
		envelope[fieldPayload] = summary(p)
	case event.RoomDeleted:
		envelope[fieldPayload] = string(p.RoomID)
	case event.NewMessage:
		envelope[fieldPayload] = message(p)
	case event.RoomExpiration:
		envelope[fieldPayload] = p.MinutesLeft
		envelope[fieldRoomID] = string(p.RoomID)
	case event.RoomMessages:
		envelope[fieldPayload] = map[string]any{
			"roomId":   string(p.RoomID),
			"messages": lo.ToAnySlice(lo.Map(p.Messages, func(m event.NewMessage, _ int) map[string]any { return message(m) })),
		}
	case event.UserRooms:
		envelope[fieldPayload] = lo.ToAnySlice(lo.Map(p.Rooms, func(s event.RoomSummary, _ int) map[string]any { return summary(s) }))
	case event.Failure:
		envelope[fieldPayload] = map[string]any{"kind": p.Kind, "message": p.Message}
	default:
		return nil, fmt.Errorf("%w: no wire form for %T", errors.ErrInvalidPayload, evt.Payload)
	}
	return structpb.NewStruct(envelope)
}

func summary(s event.RoomSummary) map[string]any {
	return map[string]any{"id": string(s.ID), "userCount": s.UserCount}
}

func message(m event.NewMessage) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"roomId":    string(m.RoomID),
		"userId":    m.UserID,
		"message":   m.Message,
		"timestamp": m.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// DecodeCommand parses an inbound envelope. Payloads naming a single room
// or user may be sent as a bare string.
func DecodeCommand(envelope *structpb.Struct) (chat.Command, error) {
	fields := envelope.GetFields()
	name, ok := fields[fieldEvent].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("%w: missing event name", errors.ErrInvalidPayload)
	}
	payload := fields[fieldPayload]

	switch name.StringValue {
	case chat.RegisterCommand{}.Name():
		userID, err := scalarOrField(payload, "userId")
		return chat.RegisterCommand{UserID: userID}, err
	case chat.CreateRoomCommand{}.Name():
		p, err := object(payload)
		if err != nil {
			return nil, err
		}
		userIDs, err := stringList(p, "userIds")
		return chat.CreateRoomCommand{RoomID: chat.RoomID(str(p, "roomId")), UserIDs: userIDs}, err
	case chat.JoinRoomCommand{}.Name():
		p, err := object(payload)
		if err != nil {
			return nil, err
		}
		return chat.JoinRoomCommand{RoomID: chat.RoomID(str(p, "roomId")), UserID: str(p, "userId")}, nil
	case chat.JoinByUserCommand{}.Name():
		p, err := object(payload)
		if err != nil {
			return nil, err
		}
		return chat.JoinByUserCommand{UserID: str(p, "userId"), CurrentUserID: str(p, "currentUserId")}, nil
	case chat.SendMessageCommand{}.Name():
		p, err := object(payload)
		if err != nil {
			return nil, err
		}
		return chat.SendMessageCommand{
			RoomID: chat.RoomID(str(p, "roomId")),
			UserID: str(p, "userId"),
			Body:   str(p, "message"),
		}, nil
	case chat.GetMessagesCommand{}.Name():
		roomID, err := scalarOrField(payload, "roomId")
		return chat.GetMessagesCommand{RoomID: chat.RoomID(roomID)}, err
	case chat.GetRoomExpirationCommand{}.Name():
		roomID, err := scalarOrField(payload, "roomId")
		return chat.GetRoomExpirationCommand{RoomID: chat.RoomID(roomID)}, err
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, name.StringValue)
	}
}

// EncodeCommand is the client side of DecodeCommand.
func EncodeCommand(cmd chat.Command) (*structpb.Struct, error) {
	var payload any
	switch c := cmd.(type) {
	case chat.RegisterCommand:
		payload = c.UserID
	case chat.CreateRoomCommand:
		payload = map[string]any{"roomId": string(c.RoomID), "userIds": lo.ToAnySlice(c.UserIDs)}
	case chat.JoinRoomCommand:
		payload = map[string]any{"roomId": string(c.RoomID), "userId": c.UserID}
	case chat.JoinByUserCommand:
		payload = map[string]any{"userId": c.UserID, "currentUserId": c.CurrentUserID}
	case chat.SendMessageCommand:
		payload = map[string]any{"roomId": string(c.RoomID), "userId": c.UserID, "message": c.Body}
	case chat.GetMessagesCommand:
		payload = string(c.RoomID)
	case chat.GetRoomExpirationCommand:
		payload = string(c.RoomID)
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, cmd)
	}
	return structpb.NewStruct(map[string]any{fieldEvent: cmd.Name(), fieldPayload: payload})
}

func object(payload *structpb.Value) (*structpb.Struct, error) {
	p := payload.GetStructValue()
	if p == nil {
		return nil, fmt.Errorf("%w: payload must be an object", errors.ErrInvalidPayload)
	}
	return p, nil
}

func scalarOrField(payload *structpb.Value, field string) (string, error) {
	switch kind := payload.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_StructValue:
		return str(kind.StructValue, field), nil
	default:
		return "", fmt.Errorf("%w: payload must be a string or carry %s", errors.ErrInvalidPayload, field)
	}
}

// str returns "" for a missing or non-string field; validation rejects
// the command afterwards when the field is required.
func str(p *structpb.Struct, field string) string {
	return p.GetFields()[field].GetStringValue()
}

func stringList(p *structpb.Struct, field string) ([]string, error) {
	values := p.GetFields()[field].GetListValue().GetValues()
	result := make([]string, 0, len(values))
	for _, value := range values {
		s, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s must only hold strings", errors.ErrInvalidPayload, field)
		}
		result = append(result, s.StringValue)
	}
	return result, nil
}
