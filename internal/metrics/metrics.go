// Package metrics holds the server's Prometheus collectors, registered once
// at startup and passed by reference into every component that emits one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set is the complete collection of counters and gauges this server
// exposes. Callers construct one with New and share it; the components that
// take a *Set also accept nil and then record nothing.
type Set struct {
	ConnectionsAccepted prometheus.Counter
	ConnectionsRejected prometheus.Counter
	QueueDepth          prometheus.Gauge
	ActiveSessions      prometheus.Gauge
	BytesServed         *prometheus.CounterVec // label "compressed" = "true"/"false"
	RequestsByType      *prometheus.CounterVec // label "type"
}

// New registers the full collector set against reg.
func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfsd",
			Name:      "connections_accepted_total",
			Help:      "Connections accepted by the listener.",
		}),
		ConnectionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfsd",
			Name:      "connections_rejected_total",
			Help:      "Connections rejected because the worker queue was full.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rfsd",
			Name:      "queue_depth",
			Help:      "Connections currently queued waiting for a worker.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rfsd",
			Name:      "active_sessions",
			Help:      "Live coalesced file-retrieval sessions.",
		}),
		BytesServed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rfsd",
			Name:      "file_bytes_served_total",
			Help:      "Bytes served by file-retrieval replies.",
		}, []string{"compressed"}),
		RequestsByType: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rfsd",
			Name:      "requests_total",
			Help:      "Requests handled, by wire message type.",
		}, []string{"type"}),
	}
}
