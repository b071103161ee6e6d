package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dbl"

// Metrics holds the Prometheus collectors for API requests and the daemon loops.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	VotesPublished   *prometheus.CounterVec
	StatsReports     *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API request latency histogram",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"op"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Current number of API requests awaiting completion",
			},
		),
		VotesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_published_total",
				Help:      "Votes announced downstream by watched bot",
			},
			[]string{"bot_id"},
		),
		StatsReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_reports_total",
				Help:      "Stats reporter cycles by result (posted, unchanged, error)",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.RequestsInFlight, m.VotesPublished, m.StatsReports)
	return m
}

// Registry exposes the private registry for handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted implements async.Observer.
func (m *Metrics) RequestStarted(string) {
	m.RequestsInFlight.Inc()
}

// RequestFinished implements async.Observer.
func (m *Metrics) RequestFinished(op, outcome string, elapsed time.Duration) {
	m.RequestsInFlight.Dec()
	m.RequestsTotal.WithLabelValues(op, outcome).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// VotePublished counts one announced vote.
func (m *Metrics) VotePublished(botID string) {
	m.VotesPublished.WithLabelValues(botID).Inc()
}

// StatsReported counts one stats reporter cycle.
func (m *Metrics) StatsReported(result string) {
	m.StatsReports.WithLabelValues(result).Inc()
}
