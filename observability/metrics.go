package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector of the service. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	ConversationsCreated prometheus.Counter
	MessagesAppended     prometheus.Counter
	AttachmentsStored    prometheus.Counter
	AttachmentsRejected  *prometheus.CounterVec
	RealtimePublished    prometheus.Counter
	RealtimeDropped      *prometheus.CounterVec
	RealtimeDelivered    prometheus.Counter
	LiveSubscriptions    prometheus.Gauge
	QueueLength          *prometheus.GaugeVec
	ProcessCPUPercent    prometheus.Gauge
	ProcessRSSBytes      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dm_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dm_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		ConversationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "dm_conversations_created_total",
			Help: "Direct conversations created",
		}),
		MessagesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "dm_messages_appended_total",
			Help: "Messages durably stored",
		}),
		AttachmentsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "dm_attachments_stored_total",
			Help: "Attachments stored with their message",
		}),
		AttachmentsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dm_attachments_rejected_total",
			Help: "Attachments refused by validation",
		}, []string{"reason"}),
		RealtimePublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "dm_realtime_published_total",
			Help: "Events handed to the fan-out",
		}),
		RealtimeDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dm_realtime_dropped_total",
			Help: "Events lost before reaching a subscriber",
		}, []string{"stage"}),
		RealtimeDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "dm_realtime_delivered_total",
			Help: "Events accepted by a sink",
		}),
		LiveSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dm_live_subscriptions",
			Help: "Open realtime subscriptions",
		}),
		QueueLength: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dm_queue_length",
			Help: "Buffered items waiting in an internal channel",
		}, []string{"channel"}),
		ProcessCPUPercent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dm_process_cpu_percent",
			Help: "CPU usage of the server process",
		}),
		ProcessRSSBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dm_process_rss_bytes",
			Help: "Resident memory of the server process",
		}),
	}
}

func (m *Metrics) ConversationCreated() {
	if m != nil {
		m.ConversationsCreated.Inc()
	}
}

func (m *Metrics) MessageAppended(withAttachment bool) {
	if m == nil {
		return
	}
	m.MessagesAppended.Inc()
	if withAttachment {
		m.AttachmentsStored.Inc()
	}
}

func (m *Metrics) AttachmentRejected(reason string) {
	if m != nil {
		m.AttachmentsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Published() {
	if m != nil {
		m.RealtimePublished.Inc()
	}
}

// Dropped counts a lost event. stage is "publish" when the fan-out queue
// was full, "sink" when a subscriber failed or timed out.
func (m *Metrics) Dropped(stage string) {
	if m != nil {
		m.RealtimeDropped.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) Delivered() {
	if m != nil {
		m.RealtimeDelivered.Inc()
	}
}

func (m *Metrics) SubscriptionOpened() {
	if m != nil {
		m.LiveSubscriptions.Inc()
	}
}

func (m *Metrics) SubscriptionClosed() {
	if m != nil {
		m.LiveSubscriptions.Dec()
	}
}

func (m *Metrics) QueueSample(channel string, length int) {
	if m != nil {
		m.QueueLength.WithLabelValues(channel).Set(float64(length))
	}
}

func (m *Metrics) ProcessSample(cpuPercent float64, rssBytes uint64) {
	if m == nil {
		return
	}
	m.ProcessCPUPercent.Set(cpuPercent)
	m.ProcessRSSBytes.Set(float64(rssBytes))
}
