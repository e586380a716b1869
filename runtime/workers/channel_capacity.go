package workers

import (
	"context"
	"dm-lab/observability"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length of buffered channels
// into the queue gauge. Reading len and cap is non-blocking, so this won't
// interfere with the producers. A warning is logged when fewer than
// lowCapacityThreshold slots are left.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metrics              *observability.Metrics
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger,
	channels []NamedChannel, metrics *observability.Metrics,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log: log, channels: channels,
		metrics:              metrics,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				w.sample(nc)
			}
		}
	}
}

func (w ChannelCapacityWorker) sample(nc NamedChannel) {
	v := reflect.ValueOf(nc.Channel)
	if v.Kind() != reflect.Chan {
		w.log.Error("Provided object is not a channel", "name", nc.Name)
		return
	}
	capacity, length := v.Cap(), v.Len()
	w.metrics.QueueSample(nc.Name, length)
	if capacity <= 0 {
		// unbuffered
		return
	}
	if capacityLeft := capacity - length; capacityLeft <= w.lowCapacityThreshold {
		w.log.Warn(fmt.Sprintf("Channel %s usage: %d / %d", nc.Name, length, capacity), "capacity_left", capacityLeft)
	}
}
