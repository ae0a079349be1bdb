package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/reasoning"
)

// EcosystemReport is the locally computed health snapshot of the worker
// pool. It is always available, even when the reasoning service is down.
type EcosystemReport struct {
	PoolSize           int       `json:"pool_size"`
	DistinctArchetypes int       `json:"distinct_archetypes"`
	TotalInteractions  int       `json:"total_interactions"`
	PendingRequests    int       `json:"pending_requests"`
	DiversityScore     float64   `json:"diversity_score"`
	ActivityScore      float64   `json:"activity_score"`
	HealthScore        float64   `json:"health_score"`
	Recommendations    []string  `json:"recommendations"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// EvaluateEcosystem derives pool health from local statistics without any
// reasoning call. Diversity is the fraction of archetypes represented in
// the pool; activity saturates at ten interactions per worker; health is
// the mean of the two. An empty pool scores zero on all three.
func (o *Orchestrator) EvaluateEcosystem() *EcosystemReport {
	poolSize := o.pool.Len()
	distinct := o.pool.DistinctArchetypes()
	interactions := o.pool.TotalInteractions()
	pending := o.queue.Pending()

	report := &EcosystemReport{
		PoolSize:           poolSize,
		DistinctArchetypes: distinct,
		TotalInteractions:  interactions,
		PendingRequests:    pending,
		Recommendations:    []string{},
		GeneratedAt:        time.Now().UTC(),
	}

	report.DiversityScore = float64(distinct) / float64(core.ArchetypeCount())
	if poolSize > 0 {
		report.ActivityScore = math.Min(1, float64(interactions)/float64(poolSize*10))
	}
	report.HealthScore = (report.DiversityScore + report.ActivityScore) / 2

	if report.HealthScore < 0.5 {
		report.Recommendations = append(report.Recommendations,
			"spawn more diverse workers to improve ecosystem health")
	}
	if report.ActivityScore < 0.3 {
		report.Recommendations = append(report.Recommendations,
			"pool underutilized, route more work to existing workers")
	}
	if o.queue.Backlog(o.config.BacklogThreshold) {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d spawn requests pending, process the request queue to clear the backlog", pending))
	}

	o.logger.Debug("ecosystem evaluated",
		"health", report.HealthScore,
		"diversity", report.DiversityScore,
		"activity", report.ActivityScore,
		"pending", pending)
	return report
}

// SpawnDirective names a worker shape the optimizer wants added.
type SpawnDirective struct {
	Archetype      core.Archetype `json:"archetype"`
	Specialization string         `json:"specialization"`
}

// WorkerAdjustment is a non-destructive suggestion for an existing worker.
// Adjustments are surfaced to the caller, never applied automatically.
type WorkerAdjustment struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion"`
}

// OptimizationReport is the reasoning-backed optimization plan for the
// pool. Applied reports whether the retire and spawn directives were
// executed; Retired and Spawned list what actually changed, which can be
// less than the directives when a named worker is already gone or a spawn
// fails.
type OptimizationReport struct {
	AgentsToRetire []string           `json:"agents_to_retire"`
	AgentsToSpawn  []SpawnDirective   `json:"agents_to_spawn"`
	AgentsToModify []WorkerAdjustment `json:"agents_to_modify"`
	OverallHealth  float64            `json:"overall_health"`
	Priority       string             `json:"optimization_priority"`
	Applied        bool               `json:"applied"`
	Retired        []string           `json:"retired,omitempty"`
	Spawned        []string           `json:"spawned,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// optimizationPayload is the JSON shape requested from pool optimization.
type optimizationPayload struct {
	AgentsToRetire       []string                  `json:"agents_to_retire,omitempty" description:"names of workers to retire"`
	AgentsToSpawn        []spawnDirectivePayload   `json:"agents_to_spawn,omitempty" description:"workers to add"`
	AgentsToModify       []workerAdjustmentPayload `json:"agents_to_modify,omitempty" description:"suggested adjustments to keep in place"`
	OverallHealth        float64                   `json:"overall_health" description:"pool health in [0,1]"`
	OptimizationPriority string                    `json:"optimization_priority" description:"high, medium or low"`
}

type spawnDirectivePayload struct {
	Archetype      string `json:"archetype"`
	Specialization string `json:"specialization"`
}

type workerAdjustmentPayload struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion"`
}

const optimizationTemplate = `Review the specialist worker pool below and recommend how to optimize it.

Current workers:
{{.Workers}}

Ecosystem health report:
{{.Report}}

Respond with a JSON object matching this schema:
{{.Schema}}

overall_health must be between 0 and 1. optimization_priority must be high,
medium or low; use high only when the pool needs immediate restructuring.
Only retire workers that exist. Every archetype in agents_to_spawn must come
from this list: {{.Archetypes}}.`

// OptimizePool asks the reasoning service for a restructuring plan built
// from the pool summary and the local ecosystem report. Retire and spawn
// directives are applied only when the plan's priority is high; lower
// priorities surface the plan without acting on it. An unusable reasoning
// response degrades to an empty low-priority report without an error; the
// error return is reserved for context cancellation.
func (o *Orchestrator) OptimizePool(ctx context.Context) (*OptimizationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize pool: %w", err)
	}

	ecosystem := o.EvaluateEcosystem()
	ecosystemJSON, err := json.MarshalIndent(ecosystem, "", "  ")
	if err != nil {
		return o.degradedOptimization(err), nil
	}

	text, err := prompt.Render(optimizationTemplate, map[string]any{
		"Workers":    o.poolSummary(),
		"Report":     string(ecosystemJSON),
		"Schema":     reasoning.DescribeSchema[optimizationPayload](),
		"Archetypes": strings.Join(archetypeNames(), ", "),
	})
	if err != nil {
		return o.degradedOptimization(err), nil
	}

	payload, err := reasoning.Structured[optimizationPayload](ctx, o.service, reasoning.Request{
		Prompt: text,
		Model:  o.config.DefaultModel,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("optimize pool: %w", err)
		}
		return o.degradedOptimization(err), nil
	}

	report := &OptimizationReport{
		AgentsToRetire: payload.AgentsToRetire,
		AgentsToSpawn:  make([]SpawnDirective, 0, len(payload.AgentsToSpawn)),
		AgentsToModify: make([]WorkerAdjustment, 0, len(payload.AgentsToModify)),
		OverallHealth:  core.Clamp01(payload.OverallHealth),
		Priority:       strings.ToLower(strings.TrimSpace(payload.OptimizationPriority)),
		GeneratedAt:    time.Now().UTC(),
	}
	if report.AgentsToRetire == nil {
		report.AgentsToRetire = []string{}
	}
	for _, directive := range payload.AgentsToSpawn {
		archetype, err := core.ParseArchetype(strings.TrimSpace(directive.Archetype))
		if err != nil || strings.TrimSpace(directive.Specialization) == "" {
			o.logger.Debug("dropping unusable spawn directive",
				"archetype", directive.Archetype,
				"specialization", directive.Specialization)
			continue
		}
		report.AgentsToSpawn = append(report.AgentsToSpawn, SpawnDirective{
			Archetype:      archetype,
			Specialization: directive.Specialization,
		})
	}
	for _, adjustment := range payload.AgentsToModify {
		if strings.TrimSpace(adjustment.Name) == "" {
			continue
		}
		report.AgentsToModify = append(report.AgentsToModify, WorkerAdjustment{
			Name:       adjustment.Name,
			Suggestion: adjustment.Suggestion,
		})
	}

	if report.Priority != string(core.PriorityHigh) {
		o.logger.Info("pool optimization surfaced without applying",
			"priority", report.Priority,
			"health", report.OverallHealth)
		return report, nil
	}

	// High priority applies the plan now. Retire before spawning so a
	// replacement can reuse a freed name.
	report.Applied = true
	for _, name := range report.AgentsToRetire {
		if o.Retire(name) {
			report.Retired = append(report.Retired, name)
		}
	}
	for _, directive := range report.AgentsToSpawn {
		handle, err := o.Spawn(ctx, directive.Archetype, directive.Specialization, nil, "")
		if err != nil {
			o.logger.Error("optimization spawn failed",
				"archetype", directive.Archetype,
				"specialization", directive.Specialization,
				"error", err.Error())
			continue
		}
		report.Spawned = append(report.Spawned, handle.Name())
	}
	o.logger.Info("pool optimization applied",
		"retired", len(report.Retired),
		"spawned", len(report.Spawned),
		"health", report.OverallHealth)
	return report, nil
}

// degradedOptimization is the conservative plan returned when the reasoning
// service is unusable: change nothing, surface nothing.
func (o *Orchestrator) degradedOptimization(cause error) *OptimizationReport {
	degraded := &core.AnalysisDegradedError{Op: "optimize_pool", Err: cause}
	o.logger.Warn("pool optimization degraded", "error", degraded.Error())
	o.metrics.RecordDegradedAnalysis("optimize_pool")
	return &OptimizationReport{
		AgentsToRetire: []string{},
		AgentsToSpawn:  []SpawnDirective{},
		AgentsToModify: []WorkerAdjustment{},
		Priority:       string(core.PriorityLow),
		Applied:        false,
		GeneratedAt:    time.Now().UTC(),
	}
}

// poolSummary renders one line per worker for the optimization prompt,
// sorted for deterministic prompts.
func (o *Orchestrator) poolSummary() string {
	handles := o.pool.Handles()
	if len(handles) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(handles))
	for _, h := range handles {
		lines = append(lines, fmt.Sprintf("- %s: %s specialized in %s, %d interactions",
			h.Name(), h.Archetype(), h.Specialization(), h.InteractionCount()))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func archetypeNames() []string {
	archetypes := core.Archetypes()
	names := make([]string, len(archetypes))
	for i, a := range archetypes {
		names[i] = string(a)
	}
	return names
}
