// Package runtime carries realtime events from the write path to live
// subscribers and permanent sinks. It holds no messaging rules.
package runtime

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"dm-lab/observability"
	"dm-lab/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     *workers.Supervisor
	registry       *Registry
	events         chan event.DomainEvent
	notifier       *Notifier
	permanentSinks []contract.EventSink
	extraWorkers   []contract.Worker
	sinkTimeout    time.Duration
	metricInterval time.Duration
	metrics        *observability.Metrics
	cancel         context.CancelFunc
	done           chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor *workers.Supervisor, registry *Registry,
	bufferSize int, sinkTimeout, metricInterval time.Duration, metrics *observability.Metrics) *Orchestrator {
	events := make(chan event.DomainEvent, bufferSize)
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		events:         events,
		notifier:       NewNotifier(events, log, metrics),
		sinkTimeout:    sinkTimeout,
		metricInterval: metricInterval,
		metrics:        metrics,
	}
}

// Add registers sinks that receive every event, whatever the conversation.
// Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// AddWorker supervises an additional worker next to the fan-out.
// Must be called before Start.
func (o *Orchestrator) AddWorker(worker ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extraWorkers = append(o.extraWorkers, worker...)
}

func (o *Orchestrator) Notifier() contract.INotifier {
	return o.notifier
}

func (o *Orchestrator) Registry() contract.IRegistry {
	return o.registry
}

// Start launches the supervised workers in the background and returns.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != nil {
		return
	}

	fanout := workers.NewEventFanoutWorker(o.log, o.registry, o.events, o.sinkTimeout, o.metrics, o.permanentSinks...)
	o.supervisor.Add(fanout)
	if o.metricInterval > 0 {
		o.supervisor.Add(
			workers.NewHeartbeatWorker(o.log, o.metrics, o.registry, o.metricInterval),
			workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{{Name: "realtime_events", Channel: o.events}},
				o.metrics, o.metricInterval, lowCapacityThreshold(cap(o.events))),
		)
	}
	o.supervisor.Add(o.extraWorkers...)

	supervisedCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})
	go func() {
		defer close(o.done)
		o.supervisor.Run(supervisedCtx)
	}()
	o.log.Info("Orchestrator started", "permanent_sinks", len(o.permanentSinks))
}

// lowCapacityThreshold warns once a tenth of the queue is left.
func lowCapacityThreshold(capacity int) int {
	return max(1, capacity/10)
}

// Stop cancels every worker and waits for them to return. Events still
// queued are dropped: subscribers re-sync from the store.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.mu.Unlock()
	if cancel == nil {
		return
	}
	o.log.Info("Requesting orchestrator shutdown")
	cancel()
	<-done
	o.log.Debug("Orchestrator stopped")
}
