// Package metrics provides Prometheus metrics for the match API client.
package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome labels for match requests.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeDataShape = "data_shape_error"
)

// Manager owns the client metrics and the registry they live on.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queriesSent     prometheus.Counter
	candidates      prometheus.Counter
	matches         prometheus.Counter
	errors          *prometheus.CounterVec
}

var globalManager = NewManager() //nolint:gochecknoglobals // process-wide metrics for the CLI entry points

// NewManager creates a metrics manager on its own registry unless
// WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "osmatch",
		subsystem:        "client",
		histogramBuckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_total",
		Help:        "Match API requests by outcome and HTTP status code",
		ConstLabels: m.constLabels,
	}, []string{"outcome", "status_code"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_duration_milliseconds",
		Help:        "Round-trip time of match API requests in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.queriesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queries_sent_total",
		Help:        "Queries sent across all match requests",
		ConstLabels: m.constLabels,
	})

	m.candidates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_received_total",
		Help:        "Candidate entities returned by the service",
		ConstLabels: m.constLabels,
	})

	m.matches = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_matched_total",
		Help:        "Returned candidates the service flagged as a match",
		ConstLabels: m.constLabels,
	})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Client errors by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})
}

// RecordRequest counts a finished request and observes its duration.
// statusCode is 0 when no HTTP response was received.
func (m *Manager) RecordRequest(outcome string, statusCode int, durationMs float64) {
	code := "none"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(outcome, code).Inc()
	m.requestDuration.WithLabelValues(outcome).Observe(durationMs)
}

// RecordQueries adds n to the number of queries sent.
func (m *Manager) RecordQueries(n int) {
	m.queriesSent.Add(float64(n))
}

// RecordCandidates adds returned and matched candidate counts.
func (m *Manager) RecordCandidates(returned, matched int) {
	m.candidates.Add(float64(returned))
	m.matches.Add(float64(matched))
}

// RecordError increments the error counter for kind.
func (m *Manager) RecordError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Requests exposes the request counter, mainly for tests.
func (m *Manager) Requests() *prometheus.CounterVec {
	return m.requests
}

// Errors exposes the error counter, mainly for tests.
func (m *Manager) Errors() *prometheus.CounterVec {
	return m.errors
}

// Push sends everything in the manager's registry to a Prometheus
// Pushgateway under job. A one-shot CLI exits before any scrape, so this is
// the only way its metrics leave the process.
func (m *Manager) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}
