package server

import (
	"context"
	"room-relay/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionSink_Consume(t *testing.T) {
	req := require.New(t)
	sink := NewSessionSink(1)
	evt := event.New(event.RoomDeletedType, event.RoomDeleted{RoomID: "R1"})

	// Given a buffer of one
	req.NoError(sink.Consume(context.Background(), evt))

	// When the buffer is full the call waits for the context
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req.ErrorIs(sink.Consume(ctx, evt), context.DeadlineExceeded)

	// Then the first event is still there
	req.Equal(evt, <-sink.Events())
}
