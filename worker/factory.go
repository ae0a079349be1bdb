package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/metrics"
	"github.com/hupe1980/agentforge/reasoning"
)

// FactoryOptions configure the worker factory.
type FactoryOptions struct {
	Synthesizer *Synthesizer
	Pool        *Pool
	Logger      logging.Logger
	Metrics     *metrics.Metrics

	// DefaultModel is used for workers whose archetype rule does not pin a
	// model. Empty defers to the provider default.
	DefaultModel string

	// EvaluationWindow is how many recent interactions an evaluation
	// considers. Defaults to 10.
	EvaluationWindow int
}

// Factory creates workers from specifications and evaluates their
// performance. Registration in the pool is strict: a duplicate name fails
// the creation and leaves the pool unchanged.
type Factory struct {
	service      reasoning.Service
	synthesizer  *Synthesizer
	pool         *Pool
	logger       logging.Logger
	metrics      *metrics.Metrics
	defaultModel string
	evalWindow   int
}

// NewFactory creates a factory on top of the given service. Omitted options
// get in-memory defaults (fresh synthesizer, fresh pool, no-op logger).
func NewFactory(service reasoning.Service, optFns ...func(o *FactoryOptions)) *Factory {
	opts := FactoryOptions{
		EvaluationWindow: 10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = NewSynthesizer(service, func(o *SynthesizerOptions) {
			o.Model = opts.DefaultModel
			o.Logger = opts.Logger
		})
	}
	if opts.Pool == nil {
		opts.Pool = NewPool()
	}
	if opts.EvaluationWindow <= 0 {
		opts.EvaluationWindow = 10
	}

	return &Factory{
		service:      service,
		synthesizer:  opts.Synthesizer,
		pool:         opts.Pool,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		defaultModel: opts.DefaultModel,
		evalWindow:   opts.EvaluationWindow,
	}
}

// Pool returns the registry this factory creates workers into.
func (f *Factory) Pool() *Pool { return f.pool }

// Create synthesizes a specification, builds a handle with the archetype's
// prompt template and sampling rule, and registers it. An empty name gets a
// generated one; a duplicate name is a hard error.
func (f *Factory) Create(ctx context.Context, archetype core.Archetype, specialization string, taskContext map[string]any, name string) (*Handle, error) {
	start := time.Now()

	spec, err := f.synthesizer.Synthesize(ctx, archetype, specialization, taskContext, name)
	if err != nil {
		f.metrics.RecordSpawnFailure(string(archetype), failureReason(err))
		return nil, err
	}

	persona, err := prompt.Render(personaTemplate(spec.Archetype), spec)
	if err != nil {
		f.metrics.RecordSpawnFailure(string(archetype), "template")
		return nil, &core.SynthesisError{Archetype: archetype, Specialization: specialization, Err: err}
	}

	rule := ruleFor(spec.Archetype)
	model := rule.Model
	if model == "" {
		model = f.defaultModel
	}

	handle := newHandle(spec, persona, model, rule.Temperature, f.service, f.logger)
	if err := f.pool.Register(handle); err != nil {
		f.metrics.RecordSpawnFailure(string(archetype), "duplicate_name")
		return nil, err
	}

	f.metrics.RecordWorkerSpawn(string(spec.Archetype))
	f.metrics.SetActiveWorkers(f.pool.Len())
	f.logger.Info("worker spawned",
		"worker", spec.Name,
		"archetype", string(spec.Archetype),
		"specialization", spec.Specialization,
		"duration", time.Since(start).String(),
	)
	return handle, nil
}

// evalPayload is the JSON shape requested for evaluations.
type evalPayload struct {
	QualityScore               float64  `json:"quality_score" description:"output quality in [0,1]"`
	ConsistencyScore           float64  `json:"consistency_score" description:"consistency across interactions in [0,1]"`
	ExpertiseDemonstrated      float64  `json:"expertise_demonstrated" description:"depth of expertise shown in [0,1]"`
	CollaborationEffectiveness float64  `json:"collaboration_effectiveness" description:"usefulness to the group in [0,1]"`
	Strengths                  []string `json:"strengths,omitempty" description:"what the worker does well"`
	ImprovementsNeeded         []string `json:"improvements_needed,omitempty" description:"what the worker should change"`
	Recommendation             string   `json:"recommendation,omitempty" description:"continue, adjust or replace"`
}

const evaluationTemplate = `Evaluate the recent performance of a specialist worker.

Worker: {{.Name}} ({{.Archetype}}, specialization: {{.Specialization}})

Recent interactions, oldest first:
{{.Transcript}}

Respond with a JSON object matching this schema:
{{.Schema}}

All scores must be between 0 and 1. recommendation must be one of continue,
adjust or replace.`

// Evaluate scores a worker over its recent interactions. A worker without
// any interactions gets a zero-score result without a reasoning call. An
// unusable reasoning response degrades to a neutral result instead of
// failing; only context cancellation propagates as an error.
func (f *Factory) Evaluate(ctx context.Context, handle *Handle) (*core.EvaluationResult, error) {
	window := handle.LastInteractions(f.evalWindow)
	if len(window) == 0 {
		result := &core.EvaluationResult{
			WorkerName:         handle.Name(),
			Strengths:          []string{},
			ImprovementsNeeded: []string{},
			Recommendation:     core.RecommendationContinue,
			Status:             core.EvaluationStatusNoInteractions,
			EvaluatedAt:        time.Now().UTC(),
		}
		f.metrics.RecordEvaluation(string(result.Recommendation))
		return result, nil
	}

	text, renderErr := prompt.Render(evaluationTemplate, map[string]any{
		"Name":           handle.Name(),
		"Archetype":      handle.Archetype().String(),
		"Specialization": handle.Specialization(),
		"Transcript":     formatTranscript(window),
		"Schema":         reasoning.DescribeSchema[evalPayload](),
	})
	if renderErr != nil {
		return f.degradedResult(handle, renderErr), nil
	}

	payload, err := reasoning.Structured[evalPayload](ctx, f.service, reasoning.Request{
		Prompt: text,
		Model:  f.defaultModel,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("evaluate worker %s: %w", handle.Name(), err)
		}
		return f.degradedResult(handle, err), nil
	}

	result := &core.EvaluationResult{
		WorkerName:                 handle.Name(),
		QualityScore:               core.Clamp01(payload.QualityScore),
		ConsistencyScore:           core.Clamp01(payload.ConsistencyScore),
		ExpertiseDemonstrated:      core.Clamp01(payload.ExpertiseDemonstrated),
		CollaborationEffectiveness: core.Clamp01(payload.CollaborationEffectiveness),
		Strengths:                  payload.Strengths,
		ImprovementsNeeded:         payload.ImprovementsNeeded,
		EvaluatedAt:                time.Now().UTC(),
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.ImprovementsNeeded == nil {
		result.ImprovementsNeeded = []string{}
	}
	result.OverallScore = (result.QualityScore + result.ConsistencyScore + result.ExpertiseDemonstrated + result.CollaborationEffectiveness) / 4

	result.Recommendation = core.EvaluationRecommendation(strings.ToLower(strings.TrimSpace(payload.Recommendation)))
	if !result.Recommendation.Valid() {
		result.Recommendation = recommendationForScore(result.OverallScore)
	}

	f.metrics.RecordEvaluation(string(result.Recommendation))
	f.logger.Info("worker evaluated",
		"worker", handle.Name(),
		"overall_score", result.OverallScore,
		"recommendation", string(result.Recommendation),
	)
	return result, nil
}

// degradedResult synthesizes a neutral evaluation when the reasoning
// service produced unusable output.
func (f *Factory) degradedResult(handle *Handle, cause error) *core.EvaluationResult {
	f.logger.Warn("evaluation degraded to neutral result",
		"worker", handle.Name(),
		"error", cause.Error(),
	)
	f.metrics.RecordDegradedAnalysis("evaluate_worker")
	f.metrics.RecordEvaluation(string(core.RecommendationContinue))

	return &core.EvaluationResult{
		WorkerName:                 handle.Name(),
		QualityScore:               0.5,
		ConsistencyScore:           0.5,
		ExpertiseDemonstrated:      0.5,
		CollaborationEffectiveness: 0.5,
		OverallScore:               0.5,
		Strengths:                  []string{},
		ImprovementsNeeded:         []string{},
		Recommendation:             core.RecommendationContinue,
		Status:                     core.EvaluationStatusDegraded,
		EvaluatedAt:                time.Now().UTC(),
	}
}

// recommendationForScore derives a verdict when the service returns an
// invalid one.
func recommendationForScore(overall float64) core.EvaluationRecommendation {
	switch {
	case overall >= 0.7:
		return core.RecommendationContinue
	case overall >= 0.4:
		return core.RecommendationAdjust
	default:
		return core.RecommendationReplace
	}
}

// formatTranscript renders interactions for the evaluation prompt, bounding
// each response so a single verbose interaction cannot dominate.
func formatTranscript(interactions []core.Interaction) string {
	var b strings.Builder
	for i, interaction := range interactions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%d. [%s]", i+1, interaction.Action))
		if interaction.Topic != "" {
			b.WriteString(" on ")
			b.WriteString(interaction.Topic)
		}
		b.WriteString(": ")
		b.WriteString(prompt.Truncate(interaction.Response, 500))
	}
	return b.String()
}

// failureReason maps a creation error to a metrics label.
func failureReason(err error) string {
	var unknown *core.UnknownArchetypeError
	if errors.As(err, &unknown) {
		return "unknown_archetype"
	}
	return "synthesis"
}
