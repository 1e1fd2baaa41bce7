package runtime

import (
	"room-relay/contract"
	"room-relay/domain/event"
	"sort"
	"sync"

	"github.com/samber/lo"
)

var _ contract.ISessionRegistry = (*SessionRegistry)(nil)

type session struct {
	sink   contract.EventSink
	userID string
}

// SessionRegistry tracks open connections and the identity each one
// registered. A user may hold several connections at once. It knows
// nothing about rooms: closing a connection never changes membership.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session    // session id -> connection
	users    map[string]Set[string] // user id -> session ids
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*session),
		users:    make(map[string]Set[string]),
	}
}

func (r *SessionRegistry) Connect(sessionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = &session{sink: sink}
}

// Bind attaches a user identity to a connection, replacing any previous
// one. It returns false for an unknown session.
func (r *SessionRegistry) Bind(sessionID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	r.unbindLocked(sessionID, s)
	s.userID = userID
	if _, ok = r.users[userID]; !ok {
		r.users[userID] = make(Set[string])
	}
	r.users[userID][sessionID] = struct{}{}
	return true
}

// Disconnect forgets a connection. Empty user entries are removed.
func (r *SessionRegistry) Disconnect(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	r.unbindLocked(sessionID, s)
	delete(r.sessions, sessionID)
}

func (r *SessionRegistry) UserOf(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.userID == "" {
		return "", false
	}
	return s.userID, true
}

func (r *SessionRegistry) SinksForSession(sessionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.sessions[sessionID]; ok {
		return []contract.EventSink{s.sink}
	}
	return nil
}

// SinksForUsers returns one sink per connection bound to any of userIDs.
// Users listed twice or offline are skipped.
func (r *SessionRegistry) SinksForUsers(userIDs []string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionIDs := make(Set[string])
	for _, userID := range lo.Uniq(userIDs) {
		for sessionID := range r.users[userID] {
			sessionIDs[sessionID] = struct{}{}
		}
	}
	return r.sinksLocked(lo.Keys(sessionIDs))
}

func (r *SessionRegistry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sinksLocked(lo.Keys(r.sessions))
}

// Resolve turns a delivery audience into the sinks to write to.
func (r *SessionRegistry) Resolve(delivery event.Delivery) []contract.EventSink {
	switch delivery.Audience {
	case event.AudienceSession:
		return r.SinksForSession(delivery.SessionID)
	case event.AudienceUsers:
		return r.SinksForUsers(delivery.UserIDs)
	case event.AudienceAll:
		return r.AllSinks()
	default:
		return nil
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRegistry) unbindLocked(sessionID string, s *session) {
	if s.userID == "" {
		return
	}
	if ids, ok := r.users[s.userID]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(r.users, s.userID)
		}
	}
	s.userID = ""
}

// sinksLocked keeps a stable order so deliveries are reproducible.
func (r *SessionRegistry) sinksLocked(sessionIDs []string) []contract.EventSink {
	sort.Strings(sessionIDs)
	return lo.FilterMap(sessionIDs, func(sessionID string, _ int) (contract.EventSink, bool) {
		s, ok := r.sessions[sessionID]
		if !ok {
			return nil, false
		}
		return s.sink, true
	})
}
