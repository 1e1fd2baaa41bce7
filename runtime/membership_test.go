package runtime

import (
	"room-relay/domain/chat"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMembershipIndex_Unknown_User_Has_No_Rooms(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	req.Empty(index.RoomsOf("ghost"))
	req.Zero(index.Len())
}

func TestMembershipIndex_Add_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	// When the same membership is added twice
	index.Add("u1", "R1")
	index.Add("u1", "R1")

	// Then it is recorded once
	req.Equal([]chat.RoomID{"R1"}, index.RoomsOf("u1"))
	req.Equal(1, index.Len())
}

func TestMembershipIndex_Remove_Last_Room_Prunes_User(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	// Given a user in two rooms
	index.Add("u1", "R1")
	index.Add("u1", "R2")

	// When the first room is removed
	index.Remove("u1", "R1")

	// Then the user remains indexed
	req.Equal([]chat.RoomID{"R2"}, index.RoomsOf("u1"))
	req.Equal(1, index.Len())

	// When the last one is removed twice
	index.Remove("u1", "R2")
	index.Remove("u1", "R2")

	// Then the entry is gone
	req.Empty(index.RoomsOf("u1"))
	req.Zero(index.Len())
	req.False(index.Contains("u1", "R2"))
}

func TestMembershipIndex_RoomsOf_Is_Sorted(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	for _, id := range []chat.RoomID{"ZZ99", "AB12", "MN45"} {
		index.Add("u1", id)
	}

	req.Equal([]chat.RoomID{"AB12", "MN45", "ZZ99"}, index.RoomsOf("u1"))
}

func TestMembershipIndex_Shared(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	// Given two users with overlapping rooms
	index.Add("u1", "R3")
	index.Add("u1", "R1")
	index.Add("u1", "R2")
	index.Add("u2", "R2")
	index.Add("u2", "R3")
	index.Add("u2", "R4")

	// Then only the intersection is returned, ordered
	req.Equal([]chat.RoomID{"R2", "R3"}, index.Shared("u1", "u2"))
	req.Equal([]chat.RoomID{"R2", "R3"}, index.Shared("u2", "u1"))
	req.Empty(index.Shared("u1", "ghost"))
}
