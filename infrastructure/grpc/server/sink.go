package server

import (
	"context"
	"room-relay/contract"
	"room-relay/domain/event"
)

var _ contract.EventSink = (*SessionSink)(nil)

// SessionSink buffers the events of one connection until the stream
// writer picks them up.
type SessionSink struct {
	events chan event.Event
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{events: make(chan event.Event, bufferSize)}
}

// Consume is called by the fanout. It waits for room in the buffer until
// ctx expires, so a stuck connection only costs the sink timeout.
func (s *SessionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionSink) Events() <-chan event.Event { return s.events }
