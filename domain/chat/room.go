// Package chat contains core concepts of the relay.
// This file defines Room entities and their membership rules.
// No runtime, network, or timer logic should be added here.
package chat

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

type RoomID string

func (id RoomID) String() string { return string(id) }

// Room is a named, time-bounded group of users sharing a message log.
type Room struct {
	ID        RoomID
	Members   map[string]struct{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Summary is the shape relayed to clients for room-level events.
type Summary struct {
	ID        RoomID
	UserCount int
}

func NewRoom(id RoomID, memberIDs []string, now time.Time, ttl time.Duration) *Room {
	members := make(map[string]struct{}, len(memberIDs))
	for _, userID := range memberIDs {
		members[userID] = struct{}{}
	}
	return &Room{
		ID:        id,
		Members:   members,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (r *Room) HasMember(userID string) bool {
	_, ok := r.Members[userID]
	return ok
}

// AddMember reports whether the member set changed.
func (r *Room) AddMember(userID string) bool {
	if r.HasMember(userID) {
		return false
	}
	r.Members[userID] = struct{}{}
	return true
}

func (r *Room) UserCount() int { return len(r.Members) }

// IsPairOf reports whether the room holds exactly userA and userB.
func (r *Room) IsPairOf(userA, userB string) bool {
	return userA != userB && r.UserCount() == 2 && r.HasMember(userA) && r.HasMember(userB)
}

// MemberIDs returns the members in ascending order.
func (r *Room) MemberIDs() []string {
	ids := lo.Keys(r.Members)
	sort.Strings(ids)
	return ids
}

func (r *Room) Summary() Summary {
	return Summary{ID: r.ID, UserCount: r.UserCount()}
}

// Clone returns a snapshot that shares no state with r.
func (r *Room) Clone() Room {
	members := make(map[string]struct{}, len(r.Members))
	for userID := range r.Members {
		members[userID] = struct{}{}
	}
	return Room{
		ID:        r.ID,
		Members:   members,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}
