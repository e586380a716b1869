//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"dm-lab/domain/event"
	"reflect"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, avoiding manual naming in the Worker interface.
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

// EventSink receives fan-out events. Consume must honour ctx cancellation.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks live subscribers per conversation.
type IRegistry interface {
	GetSinksForConversation(conversationID uuid.UUID) []EventSink
	Subscribe(subscriptionID string, conversationID uuid.UUID, sink EventSink)
	Unsubscribe(subscriptionID string, conversationID uuid.UUID)
}

// INotifier hands events to the fan-out without ever blocking the caller.
type INotifier interface {
	Publish(e event.DomainEvent)
}
