// Package metrics exposes Prometheus collectors for the orchestration core.
//
// A nil *Metrics is a valid no-op receiver, so components can treat metrics
// as optional without guarding every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors for worker lifecycle, discovery and
// reasoning-service instrumentation.
type Metrics struct {
	WorkerSpawnsTotal        *prometheus.CounterVec
	WorkerSpawnFailuresTotal *prometheus.CounterVec
	WorkersActive            prometheus.Gauge
	EvaluationsTotal         *prometheus.CounterVec
	SpawnRequestsTotal       *prometheus.CounterVec
	QueueDepth               prometheus.Gauge
	DegradedAnalysesTotal    *prometheus.CounterVec
	ReasoningCallsTotal      *prometheus.CounterVec
	ReasoningLatency         *prometheus.HistogramVec
}

// New registers all collectors with the default Prometheus registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all collectors with the given registerer. Tests pass a
// fresh prometheus.NewRegistry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WorkerSpawnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_worker_spawns_total",
				Help: "Total number of workers spawned",
			},
			[]string{"archetype"},
		),
		WorkerSpawnFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_worker_spawn_failures_total",
				Help: "Total number of failed worker spawns",
			},
			[]string{"archetype", "reason"},
		),
		WorkersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentforge_workers_active",
				Help: "Number of workers currently in the pool",
			},
		),
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_evaluations_total",
				Help: "Total number of worker evaluations by recommendation",
			},
			[]string{"recommendation"},
		),
		SpawnRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_spawn_requests_total",
				Help: "Total number of spawn requests by need level",
			},
			[]string{"need_level"},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentforge_request_queue_depth",
				Help: "Number of spawn requests currently pending",
			},
		),
		DegradedAnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_degraded_analyses_total",
				Help: "Total number of discovery operations that fell back to defaults",
			},
			[]string{"operation"},
		),
		ReasoningCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentforge_reasoning_calls_total",
				Help: "Total number of reasoning service calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
		ReasoningLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentforge_reasoning_latency_seconds",
				Help:    "Reasoning service call latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
	}
}

// RecordWorkerSpawn records a successful spawn.
func (m *Metrics) RecordWorkerSpawn(archetype string) {
	if m == nil {
		return
	}
	m.WorkerSpawnsTotal.WithLabelValues(archetype).Inc()
}

// RecordSpawnFailure records a failed spawn.
func (m *Metrics) RecordSpawnFailure(archetype, reason string) {
	if m == nil {
		return
	}
	m.WorkerSpawnFailuresTotal.WithLabelValues(archetype, reason).Inc()
}

// SetActiveWorkers updates the pool size gauge.
func (m *Metrics) SetActiveWorkers(n int) {
	if m == nil {
		return
	}
	m.WorkersActive.Set(float64(n))
}

// RecordEvaluation records a completed worker evaluation.
func (m *Metrics) RecordEvaluation(recommendation string) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(recommendation).Inc()
}

// RecordSpawnRequest records an enqueued spawn request.
func (m *Metrics) RecordSpawnRequest(needLevel string) {
	if m == nil {
		return
	}
	m.SpawnRequestsTotal.WithLabelValues(needLevel).Inc()
}

// SetQueueDepth updates the pending request gauge.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// RecordDegradedAnalysis records a discovery operation that fell back to
// conservative defaults.
func (m *Metrics) RecordDegradedAnalysis(operation string) {
	if m == nil {
		return
	}
	m.DegradedAnalysesTotal.WithLabelValues(operation).Inc()
}

// ObserveReasoningCall records outcome and latency of one reasoning call.
// Satisfies the reasoning.Observer interface.
func (m *Metrics) ObserveReasoningCall(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.ReasoningCallsTotal.WithLabelValues(provider, outcome).Inc()
	m.ReasoningLatency.WithLabelValues(provider).Observe(dur.Seconds())
}
