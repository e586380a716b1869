package workers

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"dm-lab/observability"
	"log/slog"
	"time"
)

// EventFanout broadcasts domain events to in-process consumers: the
// permanent sinks (search indexing) and whoever is subscribed to the
// event's conversation.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// Each sink gets its own goroutine bounded by sinkTimeout, so a slow
// subscriber never delays the others nor the queue.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	registry    contract.IRegistry
	permanent   []contract.EventSink
	sinkTimeout time.Duration
	metrics     *observability.Metrics
}

func NewEventFanoutWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	events <-chan event.DomainEvent,
	sinkTimeout time.Duration,
	metrics *observability.Metrics,
	permanent ...contract.EventSink,
) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		registry:    registry,
		permanent:   permanent,
		sinkTimeout: sinkTimeout,
		metrics:     metrics,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fan-out")
			return nil
		}
	}
}

// Fanout one goroutine for each sink
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	sinks := append([]contract.EventSink{}, w.permanent...)
	sinks = append(sinks, w.registry.GetSinksForConversation(evt.Conversation())...)

	for _, sink := range sinks {
		go w.deliver(sink, evt)
	}
}

func (w *EventFanout) deliver(sink contract.EventSink, evt event.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
	defer cancel()

	if err := sink.Consume(ctx, evt); err != nil {
		w.log.Debug("Sink did not take the event", "conversation_id", evt.Conversation(), "error", err)
		w.metrics.Dropped("sink")
		return
	}
	w.metrics.Delivered()
}
