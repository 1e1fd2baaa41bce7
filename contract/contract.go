//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"room-relay/domain/chat"
	"room-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connected client as seen by the fanout.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// ISessionRegistry resolves a delivery audience into connected sinks.
type ISessionRegistry interface {
	Resolve(delivery event.Delivery) []EventSink
}

// Publisher queues outbound deliveries.
type Publisher interface {
	Publish(ctx context.Context, delivery event.Delivery) error
}

// MessageStore holds room logs. A log is addressed by an opaque id that
// changes every time a room id is reused.
type MessageStore interface {
	Append(logID string, seq uint64, message chat.Message) error
	List(logID string) ([]chat.Message, error)
	Drop(logID string) error
}
