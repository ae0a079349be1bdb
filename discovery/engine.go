package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentforge/catalog"
	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/metrics"
	"github.com/hupe1980/agentforge/reasoning"
)

// transcriptWindow bounds how much of a discussion transcript is forwarded
// to the reasoning service. Only the most recent part signals whether a
// specialist is missing, and the bound keeps prompt size predictable.
const transcriptWindow = 500

// Options configure the discovery engine.
type Options struct {
	// Catalog supplies the closed archetype vocabulary embedded in every
	// discovery prompt. Defaults to the built-in catalog.
	Catalog *catalog.Catalog

	Logger  logging.Logger
	Metrics *metrics.Metrics

	// Model overrides the provider default for discovery calls.
	Model string

	// HistorySize bounds the telemetry ring of recorded operations.
	// Defaults to 100.
	HistorySize int

	// GapCacheSize and GapCacheTTL configure the cache in front of
	// capability-gap point analyses. Defaults: 128 entries, 5 minutes.
	GapCacheSize int
	GapCacheTTL  time.Duration

	// MaxConcurrentGapAnalyses bounds how many point analyses IdentifyGaps
	// issues in parallel. Defaults to 4.
	MaxConcurrentGapAnalyses int
}

// Engine discovers which workers an ecosystem is missing. It composes the
// capability catalog with the reasoning service to produce task analyses,
// capability gaps and spawn recommendations.
//
// Every reasoning-backed operation degrades to a conservative fallback
// instead of returning an error: discovery runs opportunistically alongside
// the primary task and must never halt it. Degradations are logged,
// counted in metrics and visible in the history ring.
type Engine struct {
	service  reasoning.Service
	catalog  *catalog.Catalog
	logger   logging.Logger
	metrics  *metrics.Metrics
	model    string
	history  *History
	gapCache *lru.Cache[string, gapCacheEntry]
	cacheTTL time.Duration
	gapLimit int
}

type gapCacheEntry struct {
	gap     core.AgentGap
	expires time.Time
}

// New creates a discovery engine on top of the given reasoning service.
func New(service reasoning.Service, optFns ...func(o *Options)) *Engine {
	opts := Options{
		HistorySize:              100,
		GapCacheSize:             128,
		GapCacheTTL:              5 * time.Minute,
		MaxConcurrentGapAnalyses: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.GapCacheSize <= 0 {
		opts.GapCacheSize = 128
	}
	if opts.GapCacheTTL <= 0 {
		opts.GapCacheTTL = 5 * time.Minute
	}
	if opts.MaxConcurrentGapAnalyses <= 0 {
		opts.MaxConcurrentGapAnalyses = 4
	}

	// Size is validated above, so construction cannot fail.
	gapCache, _ := lru.New[string, gapCacheEntry](opts.GapCacheSize)

	return &Engine{
		service:  service,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		model:    opts.Model,
		history:  NewHistory(opts.HistorySize),
		gapCache: gapCache,
		cacheTTL: opts.GapCacheTTL,
		gapLimit: opts.MaxConcurrentGapAnalyses,
	}
}

// History returns the telemetry ring of recent discovery operations.
func (e *Engine) History() *History { return e.history }

// AnalyzeTask scores a task against the currently active workers and
// recommends workers worth spawning. The prompt embeds the capability
// catalog so the model reasons over the closed archetype vocabulary;
// recommendations naming archetypes outside it are dropped. An unusable
// reasoning response yields the conservative fallback analysis.
func (e *Engine) AnalyzeTask(ctx context.Context, task string, taskContext map[string]any, existingWorkers []string) *core.TaskAnalysis {
	text, err := prompt.Render(taskAnalysisTemplate, map[string]any{
		"Task":    task,
		"Context": formatContext(taskContext),
		"Workers": formatList(existingWorkers),
		"Catalog": e.catalog.PromptOverview(),
		"Schema":  reasoning.DescribeSchema[taskAnalysisPayload](),
	})
	if err != nil {
		e.degrade("analyze_task", task, err)
		return fallbackTaskAnalysis()
	}

	payload, err := reasoning.Structured[taskAnalysisPayload](ctx, e.service, reasoning.Request{
		Prompt: text,
		Model:  e.model,
	})
	if err != nil {
		e.degrade("analyze_task", task, err)
		return fallbackTaskAnalysis()
	}

	analysis := &core.TaskAnalysis{
		ComplexityScore:     core.Clamp01(payload.ComplexityScore),
		RequiredExpertise:   payload.RequiredExpertise,
		MissingCapabilities: payload.MissingCapabilities,
		RecommendedWorkers:  make([]core.RecommendedWorker, 0, len(payload.RecommendedWorkers)),
		Confidence:          core.Clamp01(payload.Confidence),
		Reasoning:           payload.Reasoning,
	}
	if analysis.RequiredExpertise == nil {
		analysis.RequiredExpertise = []string{}
	}
	if analysis.MissingCapabilities == nil {
		analysis.MissingCapabilities = []string{}
	}

	for _, rec := range payload.RecommendedWorkers {
		archetype, err := core.ParseArchetype(strings.TrimSpace(rec.Archetype))
		if err != nil {
			e.logger.Debug("dropping recommendation outside archetype vocabulary", "archetype", rec.Archetype)
			continue
		}
		if strings.TrimSpace(rec.Specialization) == "" {
			continue
		}
		priority := core.Priority(strings.ToLower(strings.TrimSpace(rec.Priority)))
		if !priority.Valid() {
			priority = core.PriorityMedium
		}
		analysis.RecommendedWorkers = append(analysis.RecommendedWorkers, core.RecommendedWorker{
			Archetype:      archetype,
			Specialization: rec.Specialization,
			Priority:       priority,
			Reason:         rec.Reason,
		})
	}

	e.record("analyze_task", task, fmt.Sprintf("%d recommendations", len(analysis.RecommendedWorkers)))
	return analysis
}

// IdentifyGaps computes which required capabilities no active worker covers
// and analyzes each uncovered one. The set difference is purely local; only
// the per-gap point analyses reach the reasoning service, bounded in
// parallelism. The result is sorted by importance descending; ties keep the
// original order of the required list.
func (e *Engine) IdentifyGaps(ctx context.Context, required []string, existingByWorker map[string][]string) []core.AgentGap {
	missing := missingCapabilities(required, existingByWorker)
	if len(missing) == 0 {
		e.record("identify_gaps", "", "no gaps")
		return []core.AgentGap{}
	}

	existing := capabilityUnion(existingByWorker)

	slots := make([]*core.AgentGap, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.gapLimit)
	for i, capability := range missing {
		i, capability := i, capability
		g.Go(func() error {
			gap, err := e.AnalyzeCapabilityGap(gctx, capability, existing)
			if err != nil {
				return err
			}
			slots[i] = gap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.degrade("identify_gaps", "", err)
	} else {
		e.record("identify_gaps", "", fmt.Sprintf("%d of %d gaps analyzed", analyzed(slots), len(missing)))
	}

	gaps := make([]core.AgentGap, 0, len(slots))
	for _, gap := range slots {
		if gap != nil {
			gaps = append(gaps, *gap)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Importance > gaps[j].Importance })
	return gaps
}

// AnalyzeCapabilityGap performs the point analysis of a single uncovered
// capability: how important it is and what worker shape would fill it.
// Results are cached, keyed by the capability and the existing capability
// set. An unusable reasoning response returns nil without an error; the
// error return is reserved for context cancellation.
func (e *Engine) AnalyzeCapabilityGap(ctx context.Context, capability string, existingCapabilities []string) (*core.AgentGap, error) {
	key := gapCacheKey(capability, existingCapabilities)
	if entry, ok := e.gapCache.Get(key); ok {
		if time.Now().Before(entry.expires) {
			gap := entry.gap
			return &gap, nil
		}
		e.gapCache.Remove(key)
	}

	text, err := prompt.Render(capabilityGapTemplate, map[string]any{
		"Capability": capability,
		"Existing":   formatList(existingCapabilities),
		"Catalog":    e.catalog.PromptOverview(),
		"Schema":     reasoning.DescribeSchema[gapPayload](),
	})
	if err != nil {
		e.degrade("analyze_capability_gap", capability, err)
		return nil, nil
	}

	payload, err := reasoning.Structured[gapPayload](ctx, e.service, reasoning.Request{
		Prompt: text,
		Model:  e.model,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analyze capability gap %q: %w", capability, err)
		}
		e.degrade("analyze_capability_gap", capability, err)
		return nil, nil
	}

	archetype, err := core.ParseArchetype(strings.TrimSpace(payload.Archetype))
	if err != nil || strings.TrimSpace(payload.Specialization) == "" {
		e.degrade("analyze_capability_gap", capability,
			fmt.Errorf("unusable recommendation: archetype %q, specialization %q", payload.Archetype, payload.Specialization))
		return nil, nil
	}

	gap := core.AgentGap{
		Capability:     capability,
		Importance:     core.Clamp01(payload.Importance),
		Archetype:      archetype,
		Specialization: payload.Specialization,
		Justification:  payload.Justification,
	}
	e.gapCache.Add(key, gapCacheEntry{gap: gap, expires: time.Now().Add(e.cacheTTL)})
	e.record("analyze_capability_gap", capability, fmt.Sprintf("importance %.2f", gap.Importance))

	out := gap
	return &out, nil
}

// RecommendWorkers analyzes the task and converts the analysis into spawn
// recommendations, keeping them only when the analysis meets the confidence
// threshold.
//
// The confidence attached to each returned recommendation is the confidence
// of the analysis as a whole, not a per-recommendation score: a confident
// analysis carries all of its recommendations past the threshold together.
// Callers needing finer ranking should order by Priority.
func (e *Engine) RecommendWorkers(ctx context.Context, task string, taskContext map[string]any, existingWorkers []string, threshold float64) []core.SpawnRecommendation {
	analysis := e.AnalyzeTask(ctx, task, taskContext, existingWorkers)
	if analysis.Confidence < threshold {
		e.record("recommend_workers", task, fmt.Sprintf("below threshold (%.2f < %.2f)", analysis.Confidence, threshold))
		return []core.SpawnRecommendation{}
	}

	recommendations := make([]core.SpawnRecommendation, 0, len(analysis.RecommendedWorkers))
	for _, rec := range analysis.RecommendedWorkers {
		recommendations = append(recommendations, core.SpawnRecommendation{
			Archetype:      rec.Archetype,
			Specialization: rec.Specialization,
			Priority:       rec.Priority,
			Reason:         rec.Reason,
			Confidence:     analysis.Confidence,
		})
	}
	e.record("recommend_workers", task, fmt.Sprintf("%d recommendations", len(recommendations)))
	return recommendations
}

// AnalyzeDiscussion watches a running discussion for signs that a
// specialist is missing. Only the most recent transcriptWindow runes of the
// transcript are forwarded. An unusable response degrades to "no specialist
// needed" with zero confidence, so callers never spawn on bad data.
func (e *Engine) AnalyzeDiscussion(ctx context.Context, topic, transcript string, participants []string) *DiscussionAnalysis {
	text, err := prompt.Render(discussionTemplate, map[string]any{
		"Topic":        topic,
		"Participants": formatList(participants),
		"Transcript":   prompt.Tail(transcript, transcriptWindow),
		"Schema":       reasoning.DescribeSchema[discussionPayload](),
	})
	if err != nil {
		e.degrade("analyze_discussion", topic, err)
		return fallbackDiscussionAnalysis()
	}

	payload, err := reasoning.Structured[discussionPayload](ctx, e.service, reasoning.Request{
		Prompt: text,
		Model:  e.model,
	})
	if err != nil {
		e.degrade("analyze_discussion", topic, err)
		return fallbackDiscussionAnalysis()
	}

	analysis := &DiscussionAnalysis{
		NeedsSpecialist: payload.NeedsSpecialist,
		Confidence:      core.Clamp01(payload.Confidence),
		Reasoning:       payload.Reasoning,
	}
	if !payload.NeedsSpecialist {
		e.record("analyze_discussion", topic, "no specialist needed")
		return analysis
	}

	archetype, err := core.ParseArchetype(strings.TrimSpace(payload.Archetype))
	if err != nil || strings.TrimSpace(payload.Specialization) == "" {
		e.degrade("analyze_discussion", topic,
			fmt.Errorf("unusable specialist recommendation: archetype %q, specialization %q", payload.Archetype, payload.Specialization))
		return fallbackDiscussionAnalysis()
	}
	analysis.Archetype = archetype
	analysis.Specialization = payload.Specialization

	e.record("analyze_discussion", topic, fmt.Sprintf("specialist needed (confidence %.2f)", analysis.Confidence))
	return analysis
}

// fallbackTaskAnalysis is the conservative result returned when the
// reasoning service is unusable: medium complexity, no recommendations.
func fallbackTaskAnalysis() *core.TaskAnalysis {
	return &core.TaskAnalysis{
		ComplexityScore:     0.5,
		RequiredExpertise:   []string{},
		MissingCapabilities: []string{},
		RecommendedWorkers:  []core.RecommendedWorker{},
		Confidence:          0.7,
		Reasoning:           "analysis unavailable, continuing with conservative defaults",
	}
}

func fallbackDiscussionAnalysis() *DiscussionAnalysis {
	return &DiscussionAnalysis{
		NeedsSpecialist: false,
		Confidence:      0,
		Reasoning:       "analysis unavailable, no spawn recommended",
	}
}

// degrade records one operation falling back to conservative defaults.
func (e *Engine) degrade(op, subject string, cause error) {
	degraded := &core.AnalysisDegradedError{Op: op, Err: cause}
	e.logger.Warn("discovery degraded to fallback", "op", op, "subject", subject, "error", degraded.Error())
	e.metrics.RecordDegradedAnalysis(op)
	e.history.Record(HistoryEntry{
		Time:     time.Now().UTC(),
		Op:       op,
		Task:     subject,
		Outcome:  "fallback",
		Degraded: true,
	})
}

func (e *Engine) record(op, subject, outcome string) {
	e.history.Record(HistoryEntry{
		Time:    time.Now().UTC(),
		Op:      op,
		Task:    subject,
		Outcome: outcome,
	})
}

// missingCapabilities returns the required capabilities no worker covers,
// deduplicated, in first-seen order.
func missingCapabilities(required []string, existingByWorker map[string][]string) []string {
	covered := make(map[string]struct{})
	for _, caps := range existingByWorker {
		for _, capability := range caps {
			covered[capability] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(required))
	missing := make([]string, 0, len(required))
	for _, capability := range required {
		if _, ok := covered[capability]; ok {
			continue
		}
		if _, ok := seen[capability]; ok {
			continue
		}
		seen[capability] = struct{}{}
		missing = append(missing, capability)
	}
	return missing
}

// capabilityUnion flattens every worker's capabilities into one sorted,
// deduplicated list for stable prompts and cache keys.
func capabilityUnion(existingByWorker map[string][]string) []string {
	set := make(map[string]struct{})
	for _, caps := range existingByWorker {
		for _, capability := range caps {
			set[capability] = struct{}{}
		}
	}
	union := make([]string, 0, len(set))
	for capability := range set {
		union = append(union, capability)
	}
	sort.Strings(union)
	return union
}

func gapCacheKey(capability string, existing []string) string {
	sorted := make([]string, len(existing))
	copy(sorted, existing)
	sort.Strings(sorted)
	return capability + "|" + strings.Join(sorted, ",")
}

func analyzed(slots []*core.AgentGap) int {
	n := 0
	for _, gap := range slots {
		if gap != nil {
			n++
		}
	}
	return n
}

// formatContext renders a task context map as indented JSON with stable key
// order. Empty contexts render as a placeholder line.
func formatContext(taskContext map[string]any) string {
	if len(taskContext) == 0 {
		return "(none)"
	}
	b, err := json.MarshalIndent(taskContext, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", taskContext)
	}
	return string(b)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
