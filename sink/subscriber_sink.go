package sink

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/errors"
)

// SubscriberSink buffers events for one live connection. The connection's
// writer drains Events(). When the buffer is full the event is refused
// rather than waited for: a slow client loses hints, never the fan-out.
type SubscriberSink struct {
	ParticipantID string
	events        chan event.DomainEvent
}

func NewSubscriberSink(participantID string, bufferSize int) *SubscriberSink {
	return &SubscriberSink{ParticipantID: participantID, events: make(chan event.DomainEvent, bufferSize)}
}

func (s *SubscriberSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrSinkBackpressure
	}
}

// Events is never closed: late fan-out goroutines may still call Consume
// after the connection is gone.
func (s *SubscriberSink) Events() <-chan event.DomainEvent {
	return s.events
}
