package chat

// Command is an inbound client intent, already decoded from the wire.
type Command interface {
	Name() string
}

type RegisterCommand struct {
	UserID string `validate:"required,max=128"`
}

type CreateRoomCommand struct {
	RoomID  RoomID   `validate:"required,max=64"`
	UserIDs []string `validate:"required,min=1,dive,required,max=128"`
}

type JoinRoomCommand struct {
	RoomID RoomID `validate:"required,max=64"`
	UserID string `validate:"required,max=128"`
}

// JoinByUserCommand opens (or reuses) a two-party room between the
// requester (CurrentUserID) and UserID.
type JoinByUserCommand struct {
	UserID        string `validate:"required,max=128"`
	CurrentUserID string `validate:"required,max=128"`
}

type SendMessageCommand struct {
	RoomID RoomID `validate:"required,max=64"`
	UserID string `validate:"required,max=128"`
	Body   string
}

type GetMessagesCommand struct {
	RoomID RoomID `validate:"required,max=64"`
}

type GetRoomExpirationCommand struct {
	RoomID RoomID `validate:"required,max=64"`
}

func (RegisterCommand) Name() string          { return "register" }
func (CreateRoomCommand) Name() string        { return "create_room" }
func (JoinRoomCommand) Name() string          { return "join_room" }
func (JoinByUserCommand) Name() string        { return "join_by_user" }
func (SendMessageCommand) Name() string       { return "send_message" }
func (GetMessagesCommand) Name() string       { return "get_messages" }
func (GetRoomExpirationCommand) Name() string { return "get_room_expiration" }
