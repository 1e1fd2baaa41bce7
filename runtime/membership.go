package runtime

import (
	"room-relay/domain/chat"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type Set[T comparable] map[T]struct{}

// MembershipIndex maps a user to the ids of the rooms they belong to.
// It only ever holds room ids, never rooms. An entry disappears with its
// last room.
type MembershipIndex struct {
	mu    sync.RWMutex
	rooms map[string]Set[chat.RoomID]
}

func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{rooms: make(map[string]Set[chat.RoomID])}
}

// Add is idempotent.
func (m *MembershipIndex) Add(userID string, roomID chat.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[userID]; !ok {
		m.rooms[userID] = make(Set[chat.RoomID])
	}
	m.rooms[userID][roomID] = struct{}{}
}

// Remove is idempotent and prunes the user entry once it becomes empty.
func (m *MembershipIndex) Remove(userID string, roomID chat.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms, ok := m.rooms[userID]
	if !ok {
		return
	}
	delete(rooms, roomID)
	if len(rooms) == 0 {
		delete(m.rooms, userID)
	}
}

// RoomsOf returns the rooms of a user in ascending order. Unknown users get
// an empty slice.
func (m *MembershipIndex) RoomsOf(userID string) []chat.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedIDs(m.rooms[userID])
}

func (m *MembershipIndex) Contains(userID string, roomID chat.RoomID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.rooms[userID][roomID]
	return ok
}

// Shared returns the rooms both users belong to, in ascending order.
func (m *MembershipIndex) Shared(userA, userB string) []chat.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roomsA, roomsB := m.rooms[userA], m.rooms[userB]
	if len(roomsB) < len(roomsA) {
		roomsA, roomsB = roomsB, roomsA
	}
	shared := make(Set[chat.RoomID])
	for roomID := range roomsA {
		if _, ok := roomsB[roomID]; ok {
			shared[roomID] = struct{}{}
		}
	}
	return sortedIDs(shared)
}

// Len returns the number of users holding at least one room.
func (m *MembershipIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func sortedIDs(set Set[chat.RoomID]) []chat.RoomID {
	ids := lo.Keys(set)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
