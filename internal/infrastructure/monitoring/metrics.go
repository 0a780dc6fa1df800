package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trace outcomes used as the "status" label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all Prometheus metrics of the tracer
type Metrics struct {
	registry *prometheus.Registry

	TracesTotal   *prometheus.CounterVec
	TraceDuration *prometheus.HistogramVec
	NodesRecorded *prometheus.CounterVec
	ForeignCalls  prometheus.Counter
	Warnings      prometheus.Counter
	ActiveTraces  prometheus.Gauge

	// Snapshot for reports - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for reports
type Snapshot struct {
	Traces       int64
	FailedTraces int64
	Nodes        int64
	ForeignCalls int64
	Warnings     int64
	TotalTime    time.Duration
}

// NewMetrics creates a metrics collector with its own registry.
// An empty namespace defaults to "tracer".
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tracer"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TracesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traces_total",
				Help:      "Total number of tracing runs",
			},
			[]string{"convention", "status"},
		),
		TraceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trace_duration_seconds",
				Help:      "Tracing run duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"convention"},
		),
		NodesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_recorded_total",
				Help:      "Total number of IR nodes recorded",
			},
			[]string{"kind"},
		),
		ForeignCalls: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "foreign_calls_total",
				Help:      "Total number of foreign call nodes recorded",
			},
		),
		Warnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Total number of tracer warnings emitted",
			},
		),
		ActiveTraces: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_traces",
				Help:      "Number of tracing sessions currently installed",
			},
		),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TraceStarted marks a session as installed.
func (m *Metrics) TraceStarted() {
	m.ActiveTraces.Inc()
}

// TraceFinished records the outcome of a tracing run.
func (m *Metrics) TraceFinished(convention string, duration time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.ActiveTraces.Dec()
	m.TracesTotal.WithLabelValues(convention, status).Inc()
	m.TraceDuration.WithLabelValues(convention).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Traces++
	if err != nil {
		m.snapshot.FailedTraces++
	}
	m.snapshot.TotalTime += duration
	m.mu.Unlock()
}

// NodeRecorded counts one recorded node of the given kind.
func (m *Metrics) NodeRecorded(kind string) {
	m.NodesRecorded.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.Nodes++
	m.mu.Unlock()
}

// ForeignCallRecorded counts one foreign call node.
func (m *Metrics) ForeignCallRecorded() {
	m.ForeignCalls.Inc()

	m.mu.Lock()
	m.snapshot.ForeignCalls++
	m.mu.Unlock()
}

// WarningEmitted counts one diagnostic warning.
func (m *Metrics) WarningEmitted() {
	m.Warnings.Inc()

	m.mu.Lock()
	m.snapshot.Warnings++
	m.mu.Unlock()
}

// GetSnapshot returns a copy of the current values.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
