package hub

import "github.com/prometheus/client_golang/prometheus"

// Registerer is the prometheus registration surface accepted by WithMetrics.
type Registerer = prometheus.Registerer

// metrics holds the hub's prometheus instruments. A nil *metrics is valid and
// records nothing, so the hot path needs no branching at call sites.
type metrics struct {
	bufferedTotal  prometheus.Counter
	deliveredTotal *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	subscribers    prometheus.Gauge
}

func newMetrics(reg Registerer) *metrics {
	m := &metrics{
		bufferedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "testloom",
			Subsystem: "hub",
			Name:      "events_buffered_total",
			Help:      "Events queued while the hub was not yet enabled",
		}),
		deliveredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testloom",
			Subsystem: "hub",
			Name:      "events_delivered_total",
			Help:      "Per-subscriber event deliveries",
		}, []string{"kind"}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "testloom",
			Subsystem: "hub",
			Name:      "events_dropped_total",
			Help:      "Events rejected because the hub was closed",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "testloom",
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Currently subscribed loggers",
		}),
	}
	reg.MustRegister(m.bufferedTotal, m.deliveredTotal, m.droppedTotal, m.subscribers)
	return m
}

func (m *metrics) buffered() {
	if m != nil {
		m.bufferedTotal.Inc()
	}
}

func (m *metrics) delivered(kind eventKind, subscribers int) {
	if m != nil {
		m.deliveredTotal.WithLabelValues(kind.String()).Add(float64(subscribers))
	}
}

func (m *metrics) dropped() {
	if m != nil {
		m.droppedTotal.Inc()
	}
}

func (m *metrics) setSubscribers(n int) {
	if m != nil {
		m.subscribers.Set(float64(n))
	}
}
