package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.RecordWorkerSpawn("domain_expert")
	m.RecordWorkerSpawn("domain_expert")
	m.RecordSpawnFailure("trend_analyst", "synthesis")
	m.SetActiveWorkers(3)
	m.RecordEvaluation("continue")
	m.RecordSpawnRequest("critical")
	m.SetQueueDepth(2)
	m.RecordDegradedAnalysis("analyze_task")
	m.ObserveReasoningCall("mock", "success", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.WorkerSpawnsTotal.WithLabelValues("domain_expert")); got != 2 {
		t.Errorf("worker spawns = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.WorkerSpawnFailuresTotal.WithLabelValues("trend_analyst", "synthesis")); got != 1 {
		t.Errorf("spawn failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WorkersActive); got != 3 {
		t.Errorf("active workers = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.QueueDepth); got != 2 {
		t.Errorf("queue depth = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReasoningCallsTotal.WithLabelValues("mock", "success")); got != 1 {
		t.Errorf("reasoning calls = %v, want 1", got)
	}
}

func TestMetrics_NilReceiverIsNoOp(t *testing.T) {
	var m *Metrics

	m.RecordWorkerSpawn("domain_expert")
	m.RecordSpawnFailure("x", "y")
	m.SetActiveWorkers(1)
	m.RecordEvaluation("replace")
	m.RecordSpawnRequest("low")
	m.SetQueueDepth(9)
	m.RecordDegradedAnalysis("gap")
	m.ObserveReasoningCall("mock", "error", time.Second)
}
