package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_relay"

const (
	OutcomeAccepted          = "accepted"
	OutcomeMalformed         = "malformed"
	OutcomePersistenceFailed = "persistence_failed"
)

// Metrics groups the relay's prometheus collectors.
type Metrics struct {
	LiveConnections prometheus.Gauge
	Submissions     *prometheus.CounterVec
	Delivered       prometheus.Counter
	SendFailures    prometheus.Counter
	HistoryFailures prometheus.Counter
	ProcessRSS      prometheus.Gauge
	ProcessCPU      prometheus.Gauge
}

// NewMetrics registers every collector on reg.
// Tests pass a fresh prometheus.NewRegistry() to stay isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_connections",
			Help:      "Number of connections currently registered",
		}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Inbound chat payloads by outcome",
		}, []string{"outcome"}),
		Delivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Message frames queued on a live connection",
		}),
		SendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Fan-out sends that failed on a single connection",
		}),
		HistoryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_failures_total",
			Help:      "History replays skipped because the store or the connection failed",
		}),
		ProcessRSS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory sampled by the status reporter",
		}),
		ProcessCPU: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage sampled by the status reporter",
		}),
	}
}
