package e2e

import (
	"room-relay/domain/chat"
	"room-relay/infrastructure/grpc/client"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testRoomConversationSuite struct {
	BaseGrpcSuite
}

func TestRoomConversationSuite(t *testing.T) {
	suite.Run(t, &testRoomConversationSuite{})
}

func (s *testRoomConversationSuite) TestFullConversationFlow() {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	alice, bob, carol := "alice-"+suffix, "bob-"+suffix, "carol-"+suffix
	roomID := chat.RoomID("e2e-" + suffix)

	aliceSession := s.Session(s.T(), alice)
	bobSession := s.Session(s.T(), bob)
	carolSession := s.Session(s.T(), carol)

	s.Run("Step 0: Register every user", func() {
		for userID, session := range map[string]*client.RelayClient{alice: aliceSession, bob: bobSession, carol: carolSession} {
			s.Require().NoError(session.Send(chat.RegisterCommand{UserID: userID}))
		}
		s.Require().Empty(s.Await(aliceSession, "user_rooms").Payload)
		s.Await(bobSession, "user_rooms")
		s.Await(carolSession, "user_rooms")
	})

	s.Run("Step 1: Create a room for alice and bob", func() {
		s.Require().NoError(aliceSession.Send(chat.CreateRoomCommand{RoomID: roomID, UserIDs: []string{alice, bob}}))

		created := s.Await(aliceSession, "room_created").Payload.(map[string]any)
		s.Require().Equal(string(roomID), created["id"])
		s.Require().EqualValues(2, created["userCount"])
		s.Await(bobSession, "room_created")

		expiration := s.Await(aliceSession, "room_expiration")
		s.Require().Equal(string(roomID), expiration.RoomID)
	})

	s.Run("Step 2: Members receive messages in order", func() {
		s.Require().NoError(aliceSession.Send(chat.SendMessageCommand{RoomID: roomID, UserID: alice, Body: "hello"}))
		s.Require().NoError(bobSession.Send(chat.SendMessageCommand{RoomID: roomID, UserID: bob, Body: "hi alice"}))

		first := s.Await(bobSession, "new_message").Payload.(map[string]any)
		second := s.Await(bobSession, "new_message").Payload.(map[string]any)
		s.Require().Equal("hello", first["message"])
		s.Require().Equal("hi alice", second["message"])
	})

	s.Run("Step 3: A stranger cannot write but can join", func() {
		s.Require().NoError(carolSession.Send(chat.SendMessageCommand{RoomID: roomID, UserID: carol, Body: "let me in"}))
		failure := s.Await(carolSession, "error").Payload.(map[string]any)
		s.Require().Equal("not_member", failure["kind"])

		s.Require().NoError(carolSession.Send(chat.JoinRoomCommand{RoomID: roomID, UserID: carol}))
		joined := s.Await(carolSession, "room_joined").Payload.(map[string]any)
		s.Require().EqualValues(3, joined["userCount"])
	})

	s.Run("Step 4: History keeps the accepted messages only", func() {
		s.Require().NoError(carolSession.Send(chat.GetMessagesCommand{RoomID: roomID}))
		history := s.Await(carolSession, "room_messages").Payload.(map[string]any)
		messages := history["messages"].([]any)
		s.Require().Len(messages, 2)
		s.Require().Equal(alice, messages[0].(map[string]any)["userId"])
		s.Require().Equal(bob, messages[1].(map[string]any)["userId"])
	})

	s.Run("Step 5: A direct room is found again", func() {
		s.Require().NoError(aliceSession.Send(chat.JoinByUserCommand{UserID: carol, CurrentUserID: alice}))
		created := s.Await(aliceSession, "room_created").Payload.(map[string]any)
		code := created["id"].(string)
		s.Require().True(chat.IsRoomCode(chat.RoomID(code)))

		s.Require().NoError(carolSession.Send(chat.JoinByUserCommand{UserID: alice, CurrentUserID: carol}))
		joined := s.Await(carolSession, "room_joined").Payload.(map[string]any)
		s.Require().Equal(code, joined["id"])
	})
}
