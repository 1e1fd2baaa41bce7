package runtime

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/chat"
	"room-relay/errors"
	"room-relay/internal/clock"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
)

// RoomRegistry owns live rooms, their message logs and their countdowns.
// Every membership change goes through it so the MembershipIndex never
// drifts from the rooms' member sets.
type RoomRegistry struct {
	mu       sync.Mutex
	log      *slog.Logger
	clock    clock.Clock
	ttl      time.Duration
	store    contract.MessageStore
	index    *MembershipIndex
	rooms    map[chat.RoomID]*roomEntry
	logs     uint64
	onDelete func(chat.RoomID)
	closed   bool
	removals sync.WaitGroup // removals past the lock, awaited by Close
}

type roomEntry struct {
	room       *chat.Room
	logID      string
	nextSeq    uint64
	countdown  *clock.Timer
	generation uint64
}

func NewRoomRegistry(log *slog.Logger, clk clock.Clock, ttl time.Duration,
	store contract.MessageStore, index *MembershipIndex) *RoomRegistry {
	return &RoomRegistry{
		log:   log,
		clock: clk,
		ttl:   ttl,
		store: store,
		index: index,
		rooms: make(map[chat.RoomID]*roomEntry),
	}
}

// OnDelete registers the function called once a room is gone, whether it
// was deleted explicitly or expired. It runs without the registry lock.
func (r *RoomRegistry) OnDelete(hook func(chat.RoomID)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDelete = hook
}

func (r *RoomRegistry) Create(roomID chat.RoomID, memberIDs []string) (chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; ok {
		return chat.Room{}, fmt.Errorf("create %s: %w", roomID, errors.ErrRoomAlreadyExists)
	}

	now := r.clock.Now()
	r.logs++
	entry := &roomEntry{
		room:  chat.NewRoom(roomID, memberIDs, now, r.ttl),
		logID: hex.EncodeToString([]byte(roomID)) + ":" + strconv.FormatUint(r.logs, 10),
	}
	r.rooms[roomID] = entry
	for userID := range entry.room.Members {
		r.index.Add(userID, roomID)
	}
	r.armLocked(roomID, entry)

	r.log.Info("Room created", "room_id", roomID, "user_count", entry.room.UserCount())
	return entry.room.Clone(), nil
}

// Join is idempotent on membership but always restarts the countdown.
func (r *RoomRegistry) Join(roomID chat.RoomID, userID string) (chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return chat.Room{}, fmt.Errorf("join %s: %w", roomID, errors.ErrRoomNotFound)
	}
	if entry.room.AddMember(userID) {
		r.index.Add(userID, roomID)
		r.log.Debug("User joined room", "room_id", roomID, "user_id", userID)
	}
	r.armLocked(roomID, entry)
	return entry.room.Clone(), nil
}

// FindTwoPartyRoom returns the first room, by ascending id, whose members
// are exactly userA and userB.
func (r *RoomRegistry) FindTwoPartyRoom(userA, userB string) (chat.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, roomID := range r.index.Shared(userA, userB) {
		entry, ok := r.rooms[roomID]
		if ok && entry.room.IsPairOf(userA, userB) {
			return entry.room.Clone(), true
		}
	}
	return chat.Room{}, false
}

// Send appends a message to the room log. Nothing changes when the room is
// missing, the sender is not a member or the store refuses the message.
func (r *RoomRegistry) Send(roomID chat.RoomID, userID, body string) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return chat.Message{}, fmt.Errorf("send to %s: %w", roomID, errors.ErrRoomNotFound)
	}
	if !entry.room.HasMember(userID) {
		return chat.Message{}, fmt.Errorf("send to %s as %s: %w", roomID, userID, errors.ErrNotMember)
	}

	message := chat.NewMessage(roomID, userID, body, r.clock.Now().UTC())
	if err := r.store.Append(entry.logID, entry.nextSeq, message); err != nil {
		return chat.Message{}, fmt.Errorf("append to %s: %w", roomID, err)
	}
	entry.nextSeq++
	r.armLocked(roomID, entry)
	return message, nil
}

// Reset restarts the countdown without any other change.
func (r *RoomRegistry) Reset(roomID chat.RoomID) (chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return chat.Room{}, fmt.Errorf("reset %s: %w", roomID, errors.ErrRoomNotFound)
	}
	r.armLocked(roomID, entry)
	return entry.room.Clone(), nil
}

// Delete reports whether a room was removed. Deleting a missing room is a
// no-op.
func (r *RoomRegistry) Delete(roomID chat.RoomID) bool {
	r.mu.Lock()
	entry, ok := r.rooms[roomID]
	if ok {
		r.removeLocked(roomID, entry)
	}
	hook, tracked := r.onDelete, ok && r.trackLocked()
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.afterRemoval(roomID, entry.logID, hook, tracked)
	return true
}

// RemainingTTL is never negative.
func (r *RoomRegistry) RemainingTTL(roomID chat.RoomID) (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return 0, fmt.Errorf("expiration of %s: %w", roomID, errors.ErrRoomNotFound)
	}
	return max(0, entry.room.ExpiresAt.Sub(r.clock.Now())), nil
}

// Messages returns the room log in the order sends were accepted.
func (r *RoomRegistry) Messages(roomID chat.RoomID) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("messages of %s: %w", roomID, errors.ErrRoomNotFound)
	}
	return r.store.List(entry.logID)
}

func (r *RoomRegistry) Room(roomID chat.RoomID) (chat.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return chat.Room{}, false
	}
	return entry.room.Clone(), true
}

// RoomsOf returns summaries of the rooms a user belongs to, sorted by id.
func (r *RoomRegistry) RoomsOf(userID string) []chat.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.FilterMap(r.index.RoomsOf(userID), func(roomID chat.RoomID, _ int) (chat.Summary, bool) {
		entry, ok := r.rooms[roomID]
		if !ok {
			return chat.Summary{}, false
		}
		return entry.room.Summary(), true
	})
}

// Now reads the registry clock, the one message timestamps come from.
func (r *RoomRegistry) Now() time.Time {
	return r.clock.Now()
}

func (r *RoomRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Close stops every countdown and waits for removals already running, so
// the store is no longer touched by an expiry once it returns. Rooms stay
// readable but will no longer expire.
func (r *RoomRegistry) Close() {
	r.mu.Lock()
	r.closed = true
	for _, entry := range r.rooms {
		entry.countdown.Stop()
		entry.generation++
	}
	r.log.Info("Room countdowns stopped", "rooms", len(r.rooms))
	r.mu.Unlock()

	r.removals.Wait()
}

// armLocked cancels the pending countdown and schedules a new one. The
// generation lets a countdown that already fired, but lost the race for the
// lock, recognize it is stale.
func (r *RoomRegistry) armLocked(roomID chat.RoomID, entry *roomEntry) {
	if entry.countdown != nil {
		entry.countdown.Stop()
	}
	entry.generation++
	generation := entry.generation
	entry.room.ExpiresAt = r.clock.Now().Add(r.ttl)
	entry.countdown = r.clock.AfterFunc(r.ttl, func() {
		r.expire(roomID, generation)
	})
}

func (r *RoomRegistry) expire(roomID chat.RoomID, generation uint64) {
	r.mu.Lock()
	entry, ok := r.rooms[roomID]
	if !ok || entry.generation != generation {
		r.mu.Unlock()
		return
	}
	r.removeLocked(roomID, entry)
	hook, tracked := r.onDelete, r.trackLocked()
	r.mu.Unlock()

	r.log.Info("Room expired", "room_id", roomID)
	r.afterRemoval(roomID, entry.logID, hook, tracked)
}

// trackLocked registers a removal with Close. Removals after Close are not
// tracked: nothing waits for them anymore.
func (r *RoomRegistry) trackLocked() bool {
	if r.closed {
		return false
	}
	r.removals.Add(1)
	return true
}

func (r *RoomRegistry) removeLocked(roomID chat.RoomID, entry *roomEntry) {
	for userID := range entry.room.Members {
		r.index.Remove(userID, roomID)
	}
	entry.countdown.Stop()
	entry.generation++
	delete(r.rooms, roomID)
}

func (r *RoomRegistry) afterRemoval(roomID chat.RoomID, logID string, hook func(chat.RoomID), tracked bool) {
	if tracked {
		defer r.removals.Done()
	}
	if err := r.store.Drop(logID); err != nil {
		r.log.Error("Unable to drop room log", "room_id", roomID, "error", err)
	}
	if hook != nil {
		hook(roomID)
	}
}
