package sink

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/infrastructure/search"
	"fmt"
	"log/slog"
)

// SearchSink feeds the full-text index from the realtime fan-out.
// Indexing is as best-effort as delivery: a lost event leaves the
// message unsearchable but stored.
type SearchSink struct {
	index search.IMessageIndex
	log   *slog.Logger
}

func NewSearchSink(index search.IMessageIndex, log *slog.Logger) SearchSink {
	return SearchSink{index: index, log: log}
}

func (s SearchSink) Consume(ctx context.Context, e event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch evt := e.(type) {
	case event.MessageCreated:
		return s.index.Index(evt.Message)
	default:
		s.log.Debug(fmt.Sprintf("Not indexed event : %T", evt))
		return nil
	}
}
