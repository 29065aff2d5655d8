package server

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics bundles every Prometheus collector the server registers,
// each in its own Registry rather than prometheus.DefaultRegisterer —
// every Server (and every test that builds one) gets an independent
// registry, so nothing collides on duplicate registration.
type metrics struct {
	registry *prometheus.Registry

	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	commandsTotal  *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "graphd",
			Name:      "sessions_active",
			Help:      "Number of currently open client sessions.",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "graphd",
			Name:      "sessions_total",
			Help:      "Total number of sessions accepted since startup.",
		}),
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphd",
			Name:      "commands_total",
			Help:      "Total number of commands processed, by outcome.",
		}, []string{"command", "outcome"}),
		commandLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphd",
			Name:      "command_duration_seconds",
			Help:      "Time taken to process a single command, by command type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// ObserveCommand implements session.Metrics: it is handed to every
// Session via WithMetrics so command counts and latencies land in the
// same registry the /metrics endpoint serves.
func (m *metrics) ObserveCommand(command, outcome string, duration time.Duration) {
	m.commandsTotal.WithLabelValues(strings.ToLower(command), outcome).Inc()
	m.commandLatency.WithLabelValues(strings.ToLower(command)).Observe(duration.Seconds())
}
