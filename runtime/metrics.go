package runtime

import (
	"chat-relay/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_relay"

// Metrics are the reactor counters exposed on /metrics.
type Metrics struct {
	connections     prometheus.Gauge
	online          prometheus.Gauge
	accepted        prometheus.Counter
	frames          *prometheus.CounterVec
	badRequests     prometheus.Counter
	evictions       *prometheus.CounterVec
	routed          prometheus.Counter
	requeued        prometheus.Counter
	droppedMessages prometheus.Counter
	queueDepth      prometheus.Gauge
	storageFailures *prometheus.CounterVec
}

// NewMetrics registers the reactor metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live connections, authenticated or not",
		}),
		online: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_users",
			Help:      "Users bound in the session registry",
		}),
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Connections admitted by the reactor",
		}),
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Request frames received, by action",
		}, []string{"action"}),
		badRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bad_requests_total",
			Help:      "Requests answered with 400",
		}),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Connections removed by the reactor, by cause",
		}, []string{"cause"}),
		routed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_routed_total",
			Help:      "Messages handed to the destination connection",
		}),
		requeued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_requeued_total",
			Help:      "Deliveries postponed because the destination was not writable",
		}),
		droppedMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Messages whose destination was not online",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbound_queue_depth",
			Help:      "Deliveries waiting in the outbound queue after a tick",
		}),
		storageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Storage gateway calls that failed, by operation",
		}, []string{"operation"}),
	}
}

func (m *Metrics) frame(action domain.Action) {
	label := string(action)
	if !action.Known() {
		label = "other"
	}
	m.frames.WithLabelValues(label).Inc()
}

func (m *Metrics) storageFailure(operation string) {
	m.storageFailures.WithLabelValues(operation).Inc()
}
