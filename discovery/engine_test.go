package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/metrics"
	"github.com/hupe1980/agentforge/reasoning"
)

const taskAnalysisJSON = `{
	"complexity_score": 0.82,
	"required_expertise": ["tax accounting"],
	"missing_capabilities": ["regulatory_compliance"],
	"recommended_workers": [
		{"archetype": "domain_expert", "specialization": "tax law", "priority": "high", "reason": "regulatory depth"},
		{"archetype": "wizard", "specialization": "spells", "priority": "high", "reason": "not a real archetype"},
		{"archetype": "trend_analyst", "specialization": "fintech trends", "priority": "urgent", "reason": "watch the market"}
	],
	"confidence": 0.9,
	"reasoning": "task needs regulatory depth"
}`

func analysisService() *reasoning.MockService {
	return reasoning.NewMockService().AddResponse("Analyze the following task", taskAnalysisJSON)
}

func TestEngine_AnalyzeTaskParsesAndValidates(t *testing.T) {
	svc := analysisService()
	e := New(svc)

	analysis := e.AnalyzeTask(context.Background(), "prepare the quarterly tax filing", map[string]any{"region": "EU"}, []string{"writer_1"})

	assert.InDelta(t, 0.82, analysis.ComplexityScore, 1e-9)
	assert.InDelta(t, 0.9, analysis.Confidence, 1e-9)
	assert.Equal(t, []string{"tax accounting"}, analysis.RequiredExpertise)
	assert.Equal(t, []string{"regulatory_compliance"}, analysis.MissingCapabilities)

	// The unknown archetype is dropped; the unknown priority normalizes to medium.
	require.Len(t, analysis.RecommendedWorkers, 2)
	assert.Equal(t, core.ArchetypeDomainExpert, analysis.RecommendedWorkers[0].Archetype)
	assert.Equal(t, core.PriorityHigh, analysis.RecommendedWorkers[0].Priority)
	assert.Equal(t, core.ArchetypeTrendAnalyst, analysis.RecommendedWorkers[1].Archetype)
	assert.Equal(t, core.PriorityMedium, analysis.RecommendedWorkers[1].Priority)

	// The prompt carries the task, the active workers, the context and the
	// archetype vocabulary.
	sent := svc.LastCall().Prompt
	assert.Contains(t, sent, "prepare the quarterly tax filing")
	assert.Contains(t, sent, "writer_1")
	assert.Contains(t, sent, `"region": "EU"`)
	assert.Contains(t, sent, "content_specialist")
}

func TestEngine_AnalyzeTaskFallbackOnServiceError(t *testing.T) {
	svc := reasoning.NewMockService().FailWith(assert.AnError)
	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)
	e := New(svc, func(o *Options) {
		o.Metrics = m
	})

	analysis := e.AnalyzeTask(context.Background(), "some task", nil, nil)

	assert.InDelta(t, 0.5, analysis.ComplexityScore, 1e-9)
	assert.InDelta(t, 0.7, analysis.Confidence, 1e-9)
	assert.Empty(t, analysis.RecommendedWorkers)
	assert.NotEmpty(t, analysis.Reasoning)

	degraded := testutil.ToFloat64(m.DegradedAnalysesTotal.WithLabelValues("analyze_task"))
	assert.Equal(t, 1.0, degraded)
}

func TestEngine_AnalyzeTaskFallbackOnUnusableOutput(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Analyze the following task", "no json here")
	e := New(svc)

	analysis := e.AnalyzeTask(context.Background(), "some task", nil, nil)

	assert.InDelta(t, 0.5, analysis.ComplexityScore, 1e-9)
	assert.InDelta(t, 0.7, analysis.Confidence, 1e-9)
	assert.Empty(t, analysis.RecommendedWorkers)
}

func TestEngine_IdentifyGapsNoMissingMakesNoCalls(t *testing.T) {
	svc := reasoning.NewMockService()
	e := New(svc)

	gaps := e.IdentifyGaps(context.Background(), []string{"writing", "editing"}, map[string][]string{
		"writer_1": {"writing"},
		"editor_1": {"editing"},
	})

	assert.NotNil(t, gaps)
	assert.Empty(t, gaps)
	assert.Zero(t, svc.CallCount())
}

func TestEngine_IdentifyGapsSortsByImportance(t *testing.T) {
	svc := reasoning.NewMockService().
		AddResponse("Missing capability: video_editing",
			`{"importance": 0.4, "archetype": "content_specialist", "specialization": "video production", "justification": "basic cuts"}`).
		AddResponse("Missing capability: color_grading",
			`{"importance": 0.9, "archetype": "content_specialist", "specialization": "color grading", "justification": "brand look"}`).
		AddResponse("Missing capability: sound_mixing",
			`{"importance": 0.9, "archetype": "content_specialist", "specialization": "sound design", "justification": "audio quality"}`)
	e := New(svc)

	gaps := e.IdentifyGaps(context.Background(),
		[]string{"video_editing", "color_grading", "sound_mixing"},
		map[string][]string{})

	require.Len(t, gaps, 3)
	// Descending importance; the two 0.9 gaps keep their required-list order.
	assert.Equal(t, "color_grading", gaps[0].Capability)
	assert.Equal(t, "sound_mixing", gaps[1].Capability)
	assert.Equal(t, "video_editing", gaps[2].Capability)
}

func TestEngine_IdentifyGapsIsDeterministic(t *testing.T) {
	svc := reasoning.NewMockService().
		AddResponse("Missing capability: video_editing",
			`{"importance": 0.7, "archetype": "content_specialist", "specialization": "video production", "justification": "coverage"}`).
		AddResponse("Missing capability: fact_checking",
			`{"importance": 0.8, "archetype": "quality_controller", "specialization": "fact checking", "justification": "accuracy"}`)
	e := New(svc)

	required := []string{"video_editing", "fact_checking", "video_editing"}
	existing := map[string][]string{"writer_1": {"writing"}}

	first := e.IdentifyGaps(context.Background(), required, existing)
	second := e.IdentifyGaps(context.Background(), required, existing)

	// Duplicates in the required list collapse to one gap each.
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	// The second pass is served from the gap cache.
	assert.Equal(t, 2, svc.CallCount())
}

func TestEngine_IdentifyGapsSkipsUnusableAnalyses(t *testing.T) {
	svc := reasoning.NewMockService().
		AddResponse("Missing capability: video_editing",
			`{"importance": 0.7, "archetype": "content_specialist", "specialization": "video production", "justification": "coverage"}`).
		AddResponse("Missing capability: fact_checking", "no json here")
	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)
	e := New(svc, func(o *Options) {
		o.Metrics = m
	})

	gaps := e.IdentifyGaps(context.Background(), []string{"video_editing", "fact_checking"}, nil)

	require.Len(t, gaps, 1)
	assert.Equal(t, "video_editing", gaps[0].Capability)

	degraded := testutil.ToFloat64(m.DegradedAnalysesTotal.WithLabelValues("analyze_capability_gap"))
	assert.Equal(t, 1.0, degraded)
}

func TestEngine_AnalyzeCapabilityGapCachesResults(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Missing capability: hebrew_localization",
		`{"importance": 0.85, "archetype": "language_specialist", "specialization": "hebrew", "justification": "no coverage"}`)
	e := New(svc)

	first, err := e.AnalyzeCapabilityGap(context.Background(), "hebrew_localization", []string{"writing", "editing"})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, core.ArchetypeLanguageSpecialist, first.Archetype)
	assert.InDelta(t, 0.85, first.Importance, 1e-9)

	// Same capability and existing set: served from cache, order-insensitively.
	second, err := e.AnalyzeCapabilityGap(context.Background(), "hebrew_localization", []string{"editing", "writing"})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, svc.CallCount())

	// A different existing set is a different question.
	_, err = e.AnalyzeCapabilityGap(context.Background(), "hebrew_localization", []string{"writing"})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.CallCount())
}

func TestEngine_AnalyzeCapabilityGapUnusableReturnsNil(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Missing capability: fact_checking",
		`{"importance": 0.9, "archetype": "wizard", "specialization": "spells", "justification": "nope"}`)
	e := New(svc)

	gap, err := e.AnalyzeCapabilityGap(context.Background(), "fact_checking", nil)
	require.NoError(t, err)
	assert.Nil(t, gap)

	// Unusable analyses are not cached; the next call asks again.
	_, err = e.AnalyzeCapabilityGap(context.Background(), "fact_checking", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.CallCount())
}

func TestEngine_AnalyzeCapabilityGapContextCancellation(t *testing.T) {
	svc := reasoning.NewMockService()
	e := New(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AnalyzeCapabilityGap(ctx, "fact_checking", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RecommendWorkersThresholdGate(t *testing.T) {
	svc := analysisService()
	e := New(svc)

	// The canned analysis has confidence 0.9.
	below := e.RecommendWorkers(context.Background(), "task", nil, nil, 0.95)
	assert.NotNil(t, below)
	assert.Empty(t, below)

	above := e.RecommendWorkers(context.Background(), "task", nil, nil, 0.85)
	require.Len(t, above, 2)
	for _, rec := range above {
		assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
	}
	assert.Equal(t, core.ArchetypeDomainExpert, above[0].Archetype)
	assert.Equal(t, "tax law", above[0].Specialization)
}

func TestEngine_AnalyzeDiscussionParsesSpecialist(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Monitor an ongoing discussion",
		`{"needs_specialist": true, "confidence": 0.88, "archetype": "legal_compliance", "specialization": "GDPR", "reasoning": "privacy questions unanswered"}`)
	e := New(svc)

	analysis := e.AnalyzeDiscussion(context.Background(), "launch plan", "short transcript", []string{"alice", "bob"})

	assert.True(t, analysis.NeedsSpecialist)
	assert.InDelta(t, 0.88, analysis.Confidence, 1e-9)
	assert.Equal(t, core.ArchetypeLegalCompliance, analysis.Archetype)
	assert.Equal(t, "GDPR", analysis.Specialization)
}

func TestEngine_AnalyzeDiscussionForwardsOnlyRecentTranscript(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Monitor an ongoing discussion",
		`{"needs_specialist": false, "confidence": 0.6}`)
	e := New(svc)

	transcript := "HEAD_MARKER " + strings.Repeat("x", 600) + " TAIL_MARKER"
	e.AnalyzeDiscussion(context.Background(), "topic", transcript, nil)

	sent := svc.LastCall().Prompt
	assert.Contains(t, sent, "TAIL_MARKER")
	assert.NotContains(t, sent, "HEAD_MARKER")
}

func TestEngine_AnalyzeDiscussionFallbackOnServiceError(t *testing.T) {
	svc := reasoning.NewMockService().FailWith(assert.AnError)
	e := New(svc)

	analysis := e.AnalyzeDiscussion(context.Background(), "topic", "transcript", nil)

	assert.False(t, analysis.NeedsSpecialist)
	assert.Zero(t, analysis.Confidence)
}

func TestEngine_AnalyzeDiscussionUnusableSpecialistDegrades(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Monitor an ongoing discussion",
		`{"needs_specialist": true, "confidence": 0.9, "archetype": "wizard", "specialization": "spells"}`)
	e := New(svc)

	analysis := e.AnalyzeDiscussion(context.Background(), "topic", "transcript", nil)

	// A positive verdict without a usable worker shape never recommends a spawn.
	assert.False(t, analysis.NeedsSpecialist)
	assert.Zero(t, analysis.Confidence)
}

func TestEngine_HistoryRecordsOperations(t *testing.T) {
	svc := analysisService()
	e := New(svc)

	e.AnalyzeTask(context.Background(), "first task", nil, nil)
	svc.FailTimes(1, assert.AnError)
	e.AnalyzeTask(context.Background(), "second task", nil, nil)

	entries := e.History().Snapshot()
	require.Len(t, entries, 2)

	assert.Equal(t, "analyze_task", entries[0].Op)
	assert.Equal(t, "first task", entries[0].Task)
	assert.False(t, entries[0].Degraded)

	assert.Equal(t, "second task", entries[1].Task)
	assert.True(t, entries[1].Degraded)
	assert.Equal(t, "fallback", entries[1].Outcome)
}
