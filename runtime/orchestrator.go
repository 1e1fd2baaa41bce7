// Package runtime owns the relay's live state (rooms, memberships, sessions)
// and the pipeline that carries outbound events to connections.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/event"
	"room-relay/errors"
	"room-relay/runtime/workers"
	"time"
)

var _ contract.Publisher = (*Orchestrator)(nil)

// Orchestrator owns the delivery queue and the supervised workers that
// drain it. It contains no business rules.
type Orchestrator struct {
	log                  *slog.Logger
	supervisor           contract.ISupervisor
	sessions             *SessionRegistry
	rooms                *RoomRegistry
	deliveries           chan event.Delivery
	sinkTimeout          time.Duration
	ingestionTimeout     time.Duration
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	sessions *SessionRegistry, rooms *RoomRegistry,
	bufferSize int, sinkTimeout, ingestionTimeout, metricInterval time.Duration,
	lowCapacityThreshold int) *Orchestrator {
	return &Orchestrator{
		log:                  log,
		supervisor:           supervisor,
		sessions:             sessions,
		rooms:                rooms,
		deliveries:           make(chan event.Delivery, bufferSize),
		sinkTimeout:          sinkTimeout,
		ingestionTimeout:     ingestionTimeout,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

// Publish queues a delivery. It waits at most the ingestion timeout for
// room in the queue, then drops the delivery.
func (o *Orchestrator) Publish(ctx context.Context, delivery event.Delivery) error {
	select {
	case o.deliveries <- delivery:
		return nil
	default:
	}

	timer := time.NewTimer(o.ingestionTimeout)
	defer timer.Stop()
	select {
	case o.deliveries <- delivery:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		o.log.Warn("Delivery queue full, dropping event", "event", delivery.Event.Type, "audience", delivery.Audience)
		return fmt.Errorf("%s: %w", delivery.Event.Type, errors.ErrDeliveryDropped)
	}
}

// Start registers the workers and blocks until the supervisor stops.
func (o *Orchestrator) Start(ctx context.Context) {
	o.supervisor.Add(
		workers.NewEventFanout(o.log, o.deliveries, o.sessions, o.sinkTimeout),
		workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{
			{Name: "deliveries", Channel: o.deliveries},
		}, o.metricInterval, o.lowCapacityThreshold),
		workers.NewHeartbeatWorker(o.log, o.Stats, o.metricInterval),
	)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}

func (o *Orchestrator) Stats() workers.RelayStats {
	return workers.RelayStats{Rooms: o.rooms.Len(), Sessions: o.sessions.Len()}
}
