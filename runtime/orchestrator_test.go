package runtime

import (
	"context"
	"log/slog"
	"room-relay/domain/event"
	"room-relay/errors"
	"room-relay/mocks"
	"room-relay/runtime/workers"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newOrchestrator(t *testing.T, bufferSize int) (*Orchestrator, *SessionRegistry) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry, _, _ := newRegistry(t)
	sessions := NewSessionRegistry()
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	return NewOrchestrator(log, supervisor, sessions, registry,
		bufferSize, time.Second, 20*time.Millisecond, time.Hour, 1), sessions
}

func TestOrchestrator_Publish_Drops_When_Queue_Is_Full(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestrator(t, 1)
	evt := event.New(event.RoomDeletedType, event.RoomDeleted{RoomID: "R1"})

	// Given a full queue without consumer
	req.NoError(orchestrator.Publish(context.Background(), event.ToAll(evt)))

	// When another delivery arrives
	err := orchestrator.Publish(context.Background(), event.ToAll(evt))

	// Then it is dropped after the ingestion timeout
	req.ErrorIs(err, errors.ErrDeliveryDropped)
}

func TestOrchestrator_Publish_Honours_Context(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestrator(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := orchestrator.Publish(ctx, event.ToAll(event.New(event.RoomDeletedType, event.RoomDeleted{RoomID: "R1"})))

	req.ErrorIs(err, context.Canceled)
}

func TestOrchestrator_Delivers_To_Connected_Sessions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator, sessions := newOrchestrator(t, 10)
	sink := mocks.NewMockEventSink(ctrl)
	sessions.Connect("s1", sink)
	sessions.Bind("s1", "u1")

	received := make(chan event.Event, 1)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, evt event.Event) error {
			received <- evt
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan struct{})
	go func() {
		orchestrator.Start(ctx)
		close(stopped)
	}()

	evt := event.New(event.RoomCreatedType, event.RoomSummary{ID: "R1", UserCount: 1})
	req.NoError(orchestrator.Publish(ctx, event.ToUsers([]string{"u1"}, evt)))

	select {
	case got := <-received:
		req.Equal(evt, got)
	case <-time.After(time.Second):
		req.Fail("event not delivered")
	}
	req.Equal(workers.RelayStats{Rooms: 0, Sessions: 1}, orchestrator.Stats())

	orchestrator.Stop()
	<-stopped
}
