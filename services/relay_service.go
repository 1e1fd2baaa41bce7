package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/chat"
	"room-relay/domain/event"
	"room-relay/errors"
	"room-relay/runtime"
	"sync"

	"github.com/samber/lo"
)

type IRelayService interface {
	Connect(sessionID string, sink contract.EventSink)
	Disconnect(sessionID string)
	Handle(ctx context.Context, sessionID string, cmd chat.Command) error
	Reject(ctx context.Context, sessionID string, cause error)
}

// RelayService turns inbound commands into registry calls and outbound
// deliveries. Commands are handled one at a time: the registry change and
// the publication of its events happen as one step, which keeps events of
// a room in the order the registry accepted them.
type RelayService struct {
	mu           sync.Mutex
	log          *slog.Logger
	rooms        *runtime.RoomRegistry
	sessions     *runtime.SessionRegistry
	publisher    contract.Publisher
	codeAttempts int
	newCode      func() (chat.RoomID, error)
}

var _ IRelayService = (*RelayService)(nil)

func NewRelayService(log *slog.Logger, rooms *runtime.RoomRegistry, sessions *runtime.SessionRegistry,
	publisher contract.Publisher, codeAttempts int) *RelayService {
	s := &RelayService{
		log:          log,
		rooms:        rooms,
		sessions:     sessions,
		publisher:    publisher,
		codeAttempts: codeAttempts,
		newCode:      chat.NewRoomCode,
	}
	rooms.OnDelete(s.roomDeleted)
	return s
}

// WithCodeGenerator replaces the random room code source.
func (s *RelayService) WithCodeGenerator(newCode func() (chat.RoomID, error)) *RelayService {
	s.newCode = newCode
	return s
}

func (s *RelayService) Connect(sessionID string, sink contract.EventSink) {
	s.sessions.Connect(sessionID, sink)
	s.log.Debug("Session connected", "session_id", sessionID)
}

// Disconnect leaves room membership untouched.
func (s *RelayService) Disconnect(sessionID string) {
	s.sessions.Disconnect(sessionID)
	s.log.Debug("Session disconnected", "session_id", sessionID)
}

// Handle executes a command on behalf of a session. A rejected command is
// reported to that session only, as an error event, and returned.
func (s *RelayService) Handle(ctx context.Context, sessionID string, cmd chat.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := chat.Validate(cmd)
	if err == nil {
		err = s.dispatch(ctx, sessionID, cmd)
	}
	if err != nil {
		s.fail(ctx, sessionID, cmd, err)
	}
	return err
}

// Reject reports an inbound message that never became a command.
func (s *RelayService) Reject(ctx context.Context, sessionID string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail(ctx, sessionID, nil, cause)
}

func (s *RelayService) dispatch(ctx context.Context, sessionID string, cmd chat.Command) error {
	switch c := cmd.(type) {
	case chat.RegisterCommand:
		return s.register(ctx, sessionID, c)
	case chat.CreateRoomCommand:
		return s.createRoom(ctx, c)
	case chat.JoinRoomCommand:
		return s.joinRoom(ctx, sessionID, c.RoomID, c.UserID)
	case chat.JoinByUserCommand:
		return s.joinByUser(ctx, sessionID, c)
	case chat.SendMessageCommand:
		return s.sendMessage(ctx, c)
	case chat.GetMessagesCommand:
		return s.getMessages(ctx, sessionID, c)
	case chat.GetRoomExpirationCommand:
		return s.getRoomExpiration(ctx, sessionID, c)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownEvent, cmd.Name())
	}
}

func (s *RelayService) register(ctx context.Context, sessionID string, c chat.RegisterCommand) error {
	if !s.sessions.Bind(sessionID, c.UserID) {
		return fmt.Errorf("register %s: unknown session %s", c.UserID, sessionID)
	}
	rooms := lo.Map(s.rooms.RoomsOf(c.UserID), func(summary chat.Summary, _ int) event.RoomSummary {
		return event.FromSummary(summary)
	})
	s.log.Debug("User registered", "session_id", sessionID, "user_id", c.UserID, "rooms", len(rooms))
	return s.publisher.Publish(ctx, event.ToSession(sessionID,
		s.newEvent(event.UserRoomsType, event.UserRooms{Rooms: rooms})))
}

func (s *RelayService) createRoom(ctx context.Context, c chat.CreateRoomCommand) error {
	room, err := s.rooms.Create(c.RoomID, c.UserIDs)
	if err != nil {
		return err
	}
	return s.announceCreated(ctx, room)
}

func (s *RelayService) joinRoom(ctx context.Context, sessionID string, roomID chat.RoomID, userID string) error {
	room, err := s.rooms.Join(roomID, userID)
	if err != nil {
		return err
	}
	if err = s.publisher.Publish(ctx, event.ToSession(sessionID,
		s.newEvent(event.RoomJoinedType, event.FromSummary(room.Summary())))); err != nil {
		return err
	}
	return s.publishExpiration(ctx, event.ToUsers(room.MemberIDs(), s.expiration(room.ID)))
}

// joinByUser reuses the direct room of the pair when there is one and
// creates it otherwise.
func (s *RelayService) joinByUser(ctx context.Context, sessionID string, c chat.JoinByUserCommand) error {
	if c.UserID == c.CurrentUserID {
		return fmt.Errorf("%s: %w", c.UserID, errors.ErrSelfDirectRoom)
	}
	if room, ok := s.rooms.FindTwoPartyRoom(c.CurrentUserID, c.UserID); ok {
		return s.joinRoom(ctx, sessionID, room.ID, c.CurrentUserID)
	}

	room, err := s.createWithCode([]string{c.CurrentUserID, c.UserID})
	if err != nil {
		return err
	}
	return s.announceCreated(ctx, room)
}

// createWithCode draws room codes until one is free or attempts run out.
func (s *RelayService) createWithCode(memberIDs []string) (chat.Room, error) {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		roomID, err := s.newCode()
		if err != nil {
			return chat.Room{}, err
		}
		room, err := s.rooms.Create(roomID, memberIDs)
		if err == nil {
			return room, nil
		}
		if !stderrors.Is(err, errors.ErrRoomAlreadyExists) {
			return chat.Room{}, err
		}
		s.log.Debug("Room code already taken", "room_id", roomID, "attempt", attempt)
	}
	return chat.Room{}, fmt.Errorf("%d attempts: %w", s.codeAttempts, errors.ErrRoomCodeExhausted)
}

func (s *RelayService) announceCreated(ctx context.Context, room chat.Room) error {
	members := room.MemberIDs()
	if err := s.publisher.Publish(ctx, event.ToUsers(members,
		s.newEvent(event.RoomCreatedType, event.FromSummary(room.Summary())))); err != nil {
		return err
	}
	return s.publishExpiration(ctx, event.ToUsers(members, s.expiration(room.ID)))
}

func (s *RelayService) sendMessage(ctx context.Context, c chat.SendMessageCommand) error {
	message, err := s.rooms.Send(c.RoomID, c.UserID, c.Body)
	if err != nil {
		return err
	}
	room, ok := s.rooms.Room(c.RoomID)
	if !ok {
		return nil
	}
	members := room.MemberIDs()
	if err = s.publisher.Publish(ctx, event.ToUsers(members,
		s.newEvent(event.NewMessageType, event.FromMessage(message)))); err != nil {
		return err
	}
	return s.publishExpiration(ctx, event.ToUsers(members, s.expiration(room.ID)))
}

func (s *RelayService) getMessages(ctx context.Context, sessionID string, c chat.GetMessagesCommand) error {
	messages, err := s.rooms.Messages(c.RoomID)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, event.ToSession(sessionID, s.newEvent(event.RoomMessagesType, event.RoomMessages{
		RoomID:   c.RoomID,
		Messages: lo.Map(messages, func(m chat.Message, _ int) event.NewMessage { return event.FromMessage(m) }),
	})))
}

func (s *RelayService) getRoomExpiration(ctx context.Context, sessionID string, c chat.GetRoomExpirationCommand) error {
	remaining, err := s.rooms.RemainingTTL(c.RoomID)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, event.ToSession(sessionID, s.newEvent(event.RoomExpirationType,
		event.RoomExpiration{RoomID: c.RoomID, MinutesLeft: event.MinutesLeft(remaining)})))
}

// newEvent stamps outbound events with the registry clock.
func (s *RelayService) newEvent(t event.Type, payload any) event.Event {
	return event.NewAt(t, payload, s.rooms.Now())
}

func (s *RelayService) expiration(roomID chat.RoomID) event.Event {
	remaining, err := s.rooms.RemainingTTL(roomID)
	if err != nil {
		remaining = 0
	}
	return s.newEvent(event.RoomExpirationType,
		event.RoomExpiration{RoomID: roomID, MinutesLeft: event.MinutesLeft(remaining)})
}

// publishExpiration never fails the command: the room change already
// happened and was announced.
func (s *RelayService) publishExpiration(ctx context.Context, delivery event.Delivery) error {
	if err := s.publisher.Publish(ctx, delivery); err != nil {
		s.log.Warn("Expiration not published", "error", err)
	}
	return nil
}

// roomDeleted is called by the registry once a room is gone. Every
// session is told, members or not, so stale references can be pruned.
func (s *RelayService) roomDeleted(roomID chat.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.publisher.Publish(context.Background(), event.ToAll(
		s.newEvent(event.RoomDeletedType, event.RoomDeleted{RoomID: roomID})))
	if err != nil {
		s.log.Warn("Room deletion not published", "room_id", roomID, "error", err)
	}
}

func (s *RelayService) fail(ctx context.Context, sessionID string, cmd chat.Command, cause error) {
	kind := errors.KindOf(cause)
	name := "unknown"
	if cmd != nil {
		name = cmd.Name()
	}
	if kind == errors.KindInternal {
		s.log.Error("Command failed", "session_id", sessionID, "command", name, "error", cause)
	} else {
		s.log.Debug("Command rejected", "session_id", sessionID, "command", name, "kind", kind, "error", cause)
	}
	err := s.publisher.Publish(ctx, event.ToSession(sessionID, s.newEvent(event.ErrorType,
		event.Failure{Kind: string(kind), Message: cause.Error()})))
	if err != nil {
		s.log.Warn("Error event not published", "session_id", sessionID, "error", err)
	}
}
