package runtime

import (
	"dm-lab/domain/event"
	"dm-lab/observability"
	"log/slog"
)

// Notifier is the publishing side of the realtime channel. The consuming
// side is the EventFanout worker reading the same queue.
type Notifier struct {
	events  chan<- event.DomainEvent
	log     *slog.Logger
	metrics *observability.Metrics
}

func NewNotifier(events chan<- event.DomainEvent, log *slog.Logger, metrics *observability.Metrics) *Notifier {
	return &Notifier{events: events, log: log, metrics: metrics}
}

// Publish never blocks: when the queue is full the event is dropped.
// Subscribers re-sync from the message store, so a lost hint is harmless.
func (n *Notifier) Publish(e event.DomainEvent) {
	select {
	case n.events <- e:
		n.metrics.Published()
	default:
		n.log.Warn("Realtime queue full, event dropped", "conversation_id", e.Conversation())
		n.metrics.Dropped("publish")
	}
}
