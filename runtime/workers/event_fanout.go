package workers

import (
	"context"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/event"
	"time"
)

// EventFanout drains the delivery queue and writes each event to the sinks
// of its audience.
//
// There is a single consumer of the queue and sinks are written one after
// the other, so two events reach any given connection in the order they
// were published. A sink slower than sinkTimeout loses the event; the
// others are unaffected.
type EventFanout struct {
	log         *slog.Logger
	deliveries  <-chan event.Delivery
	sessions    contract.ISessionRegistry
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, deliveries <-chan event.Delivery,
	sessions contract.ISessionRegistry, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		deliveries:  deliveries,
		sessions:    sessions,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case delivery := <-w.deliveries:
			w.Fanout(ctx, delivery)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout one sink at a time.
func (w *EventFanout) Fanout(ctx context.Context, delivery event.Delivery) {
	sinks := w.sessions.Resolve(delivery)
	if len(sinks) == 0 {
		w.log.Debug("No recipient for event", "event", delivery.Event.Type, "audience", delivery.Audience)
		return
	}
	for _, sink := range sinks {
		w.consume(ctx, sink, delivery.Event)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.Event) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Warn("Event not delivered", "event", evt.Type, "error", err)
	}
}
