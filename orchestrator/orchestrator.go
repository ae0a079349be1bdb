// Package orchestrator coordinates the worker ecosystem: it owns the active
// pool and the request queue, gates automatic spawning behind a confidence
// threshold, and keeps lower-confidence needs queued instead of dropping
// them.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentforge/catalog"
	"github.com/hupe1980/agentforge/config"
	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/discovery"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/metrics"
	"github.com/hupe1980/agentforge/reasoning"
	"github.com/hupe1980/agentforge/worker"
)

// StatusCoordinated marks a coordination record whose required capabilities
// are all covered by live workers.
const StatusCoordinated = "coordinated"

// maxConcurrentSpawns bounds how many workers a single coordination call
// creates in parallel.
const maxConcurrentSpawns = 4

// Options configures an Orchestrator using the functional options pattern.
//
// Every dependency has an in-memory default so a bare New(service) is fully
// usable: the default factory owns a fresh pool, the default discovery
// engine shares the catalog, and configuration falls back to
// config.Default(). Provide your own Factory or Discovery engine to share
// them across orchestrators or to substitute test doubles.
type Options struct {
	// Factory creates and evaluates workers. Defaults to a factory built on
	// the orchestrator's service, configuration, logger and metrics. The
	// orchestrator adopts the factory's pool as the active pool.
	Factory *worker.Factory

	// Discovery analyzes tasks and discussions for missing capabilities.
	// Defaults to an engine built on the orchestrator's service.
	Discovery *discovery.Engine

	// Catalog is the closed archetype vocabulary shared with discovery.
	// Defaults to the built-in catalog.
	Catalog *catalog.Catalog

	// Config supplies thresholds and sizing. Defaults to config.Default().
	Config *config.Config

	// Logger receives structured orchestration events. Defaults to NoOp.
	Logger logging.Logger

	// Metrics receives spawn, queue and degradation counters. Optional;
	// a nil Metrics disables collection.
	Metrics *metrics.Metrics
}

// Orchestrator manages the complete lifecycle of a specialist worker
// ecosystem on top of a reasoning service.
//
// Core responsibilities:
//   - Pool ownership: the active worker pool and the request queue belong
//     exclusively to the orchestrator; other components receive copies or
//     handles, never mutable references.
//   - Admission control: discussion monitoring and task discovery spawn
//     workers immediately only above the configured confidence threshold;
//     everything below it is queued, never silently dropped.
//   - Request processing: queued requests drain critical-first FIFO, spawn
//     through the factory and leave manual-approval requests untouched.
//   - Health signals: ecosystem evaluation is computed locally from pool
//     statistics; pool optimization additionally consults the reasoning
//     service and applies its plan only at high priority.
//
// Concurrency model:
//   - The pool and the request queue serialize their own mutations, so
//     orchestrator methods are safe to call from multiple goroutines.
//   - No lock is held across a reasoning call; coordination spawns run in a
//     bounded errgroup, each writing only its own pool entry.
//   - Worker names are never overwritten: a collision surfaces as a typed
//     duplicate-name error and spawning retries under a mangled name.
//
// Failure semantics:
//   - Hard errors (failed synthesis, duplicate names, unknown archetypes)
//     surface to the caller of the spawning operation; a returned error
//     means no worker was created.
//   - Reasoning failures inside discovery or evaluation stay at the
//     sub-call boundary and degrade to conservative defaults; a single
//     failed analysis never aborts the caller's flow.
type Orchestrator struct {
	service   reasoning.Service
	factory   *worker.Factory
	discovery *discovery.Engine
	catalog   *catalog.Catalog
	config    *config.Config
	logger    logging.Logger
	metrics   *metrics.Metrics
	pool      *worker.Pool
	queue     *RequestQueue
}

// New creates an Orchestrator over the given reasoning service.
//
// With no options this wires the full default stack: built-in catalog,
// default configuration, a worker factory with a fresh pool, and a
// discovery engine sized from the configuration. The service is used as-is;
// wrap it in reasoning.NewResilient first when calling a real provider.
func New(service reasoning.Service, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.New()
	}
	if opts.Factory == nil {
		opts.Factory = worker.NewFactory(service, func(fo *worker.FactoryOptions) {
			fo.Logger = opts.Logger
			fo.Metrics = opts.Metrics
			fo.DefaultModel = opts.Config.DefaultModel
			fo.EvaluationWindow = opts.Config.EvaluationWindow
		})
	}
	if opts.Discovery == nil {
		cfg := opts.Config
		opts.Discovery = discovery.New(service, func(do *discovery.Options) {
			do.Catalog = opts.Catalog
			do.Logger = opts.Logger
			do.Metrics = opts.Metrics
			do.Model = cfg.DefaultModel
			do.HistorySize = cfg.HistorySize
			do.GapCacheSize = cfg.GapCacheSize
			do.GapCacheTTL = cfg.GapCacheTTL
		})
	}

	return &Orchestrator{
		service:   service,
		factory:   opts.Factory,
		discovery: opts.Discovery,
		catalog:   opts.Catalog,
		config:    opts.Config,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		pool:      opts.Factory.Pool(),
		queue:     NewRequestQueue(),
	}
}

// Discussion is a snapshot of a running multi-party exchange handed to
// discussion monitoring.
type Discussion struct {
	Topic        string
	Transcript   string
	Participants []string
}

// MonitorResult reports what discussion monitoring decided. Spawned and
// Queued are mutually exclusive; both are nil when no specialist is needed.
type MonitorResult struct {
	Analysis *discovery.DiscussionAnalysis
	Spawned  *worker.Handle
	Queued   *core.SpawnRequest
}

// DiscoveryOutcome reports one discovery pass over a task: the filtered
// recommendations, the workers spawned for high-confidence ones and the
// requests queued for the rest.
type DiscoveryOutcome struct {
	Recommendations []core.SpawnRecommendation
	Spawned         []*worker.Handle
	Queued          []core.SpawnRequest
}

// Coordination records that, at Timestamp, every capability the task
// required was covered by at least one live worker. It does not imply those
// workers have produced output yet.
type Coordination struct {
	Task           string    `json:"task"`
	AgentsInvolved []string  `json:"agents_involved"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// Spawn creates a worker through the factory. An empty name is generated
// from the archetype and specialization. When the name collides with a live
// worker, spawning retries under a generated name (which carries a
// timestamp suffix) and then once more with a random fragment; the pool
// entry of the existing worker is never overwritten.
func (o *Orchestrator) Spawn(ctx context.Context, archetype core.Archetype, specialization string, taskContext map[string]any, name string) (*worker.Handle, error) {
	handle, err := o.factory.Create(ctx, archetype, specialization, taskContext, name)
	if err == nil {
		return handle, nil
	}

	var dup *core.DuplicateNameError
	if !errors.As(err, &dup) {
		return nil, err
	}

	retry := worker.GenerateName(archetype, specialization)
	handle, err = o.factory.Create(ctx, archetype, specialization, taskContext, retry)
	if err == nil {
		o.logger.Debug("spawn name collision resolved", "requested", name, "name", retry)
		return handle, nil
	}
	if !errors.As(err, &dup) {
		return nil, err
	}

	retry = fmt.Sprintf("%s_%s", retry, core.NewID()[:8])
	handle, err = o.factory.Create(ctx, archetype, specialization, taskContext, retry)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("spawn name collision resolved", "requested", name, "name", retry)
	return handle, nil
}

// SubmitRequest validates and enqueues a spawn request. Submission never
// spawns; auto-approvable requests wait for the next ProcessRequests call.
func (o *Orchestrator) SubmitRequest(req core.SpawnRequest) error {
	if !req.Archetype.Valid() {
		return &core.UnknownArchetypeError{Value: string(req.Archetype)}
	}
	if !req.NeedLevel.Valid() {
		return fmt.Errorf("submit request: invalid need level %q", req.NeedLevel)
	}

	o.queue.Enqueue(req)
	o.metrics.RecordSpawnRequest(string(req.NeedLevel))
	o.metrics.SetQueueDepth(o.queue.Pending())
	o.logger.Info("spawn request queued",
		"id", req.ID,
		"archetype", req.Archetype,
		"specialization", req.Specialization,
		"need_level", req.NeedLevel,
		"requester", req.Requester)
	return nil
}

// ProcessRequests drains every auto-approvable request critical-first FIFO
// and spawns a worker for each. A failed spawn is logged and its request
// dropped; the rest still process. Requests not yet attempted when the
// context is canceled return to the front of the queue. Calling this on an
// empty or fully manual queue spawns nothing and is free of side effects.
func (o *Orchestrator) ProcessRequests(ctx context.Context) ([]*worker.Handle, error) {
	drained := o.queue.DrainAutoApproved()
	defer o.metrics.SetQueueDepth(o.queue.Pending())
	if len(drained) == 0 {
		return nil, nil
	}

	spawned := make([]*worker.Handle, 0, len(drained))
	for i, req := range drained {
		if err := ctx.Err(); err != nil {
			o.queue.requeue(drained[i:])
			return spawned, fmt.Errorf("process requests: %w", err)
		}

		handle, err := o.Spawn(ctx, req.Archetype, req.Specialization, req.Context, "")
		if err != nil {
			o.logger.Error("queued spawn failed",
				"id", req.ID,
				"archetype", req.Archetype,
				"specialization", req.Specialization,
				"error", err.Error())
			continue
		}
		spawned = append(spawned, handle)
		o.logger.Info("queued request spawned",
			"id", req.ID,
			"worker", handle.Name(),
			"need_level", req.NeedLevel,
			"requester", req.Requester)
	}
	return spawned, nil
}

// RunDiscovery analyzes a task and acts on the resulting recommendations:
// those whose confidence clears the auto-spawn threshold spawn immediately,
// the rest are queued with a need level derived from their priority. A
// failed immediate spawn falls back to queueing, so no recommendation is
// ever dropped.
func (o *Orchestrator) RunDiscovery(ctx context.Context, task string, taskContext map[string]any) (*DiscoveryOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run discovery: %w", err)
	}

	recommendations := o.discovery.RecommendWorkers(ctx, task, taskContext, o.pool.Names(), o.config.DiscoveryConfidenceThreshold)
	outcome := &DiscoveryOutcome{Recommendations: recommendations}

	for _, rec := range recommendations {
		if rec.Confidence >= o.config.AutoSpawnThreshold {
			handle, err := o.Spawn(ctx, rec.Archetype, rec.Specialization, taskContext, "")
			if err == nil {
				outcome.Spawned = append(outcome.Spawned, handle)
				o.logger.Info("discovery spawned worker",
					"worker", handle.Name(),
					"confidence", rec.Confidence)
				continue
			}
			o.logger.Error("discovery spawn failed, queueing instead",
				"archetype", rec.Archetype,
				"specialization", rec.Specialization,
				"error", err.Error())
		}

		req := core.NewSpawnRequest(needLevelFor(rec.Priority), rec.Archetype, rec.Specialization, taskContext, "task_discovery")
		if err := o.SubmitRequest(req); err != nil {
			return outcome, fmt.Errorf("queue discovery recommendation: %w", err)
		}
		outcome.Queued = append(outcome.Queued, req)
	}
	return outcome, nil
}

// MonitorDiscussion is the auto-spawn gate. The discussion is analyzed for
// a missing specialist; when one is needed with confidence at or above the
// auto-spawn threshold the worker spawns now, otherwise a high-need request
// is queued. High-confidence gaps are filled immediately, lower-confidence
// gaps are queued, never silently dropped.
func (o *Orchestrator) MonitorDiscussion(ctx context.Context, d Discussion) (*MonitorResult, error) {
	analysis := o.discovery.AnalyzeDiscussion(ctx, d.Topic, d.Transcript, d.Participants)
	result := &MonitorResult{Analysis: analysis}

	if !analysis.NeedsSpecialist {
		return result, nil
	}

	if analysis.Confidence >= o.config.AutoSpawnThreshold {
		handle, err := o.Spawn(ctx, analysis.Archetype, analysis.Specialization, map[string]any{"topic": d.Topic}, "")
		if err != nil {
			return result, fmt.Errorf("auto-spawn %s/%s: %w", analysis.Archetype, analysis.Specialization, err)
		}
		result.Spawned = handle
		o.logger.Info("auto-spawned specialist",
			"worker", handle.Name(),
			"topic", d.Topic,
			"confidence", analysis.Confidence)
		return result, nil
	}

	req := core.NewSpawnRequest(core.NeedHigh, analysis.Archetype, analysis.Specialization,
		map[string]any{"topic": d.Topic}, "discussion_monitor")
	if err := o.SubmitRequest(req); err != nil {
		return result, err
	}
	result.Queued = &req
	return result, nil
}

// CoordinateTask guarantees that every required spec has at least one live
// worker before the task proceeds. Specs take the form
// "archetype:specialization"; a bare specialization defaults to the
// content_specialist archetype. A requirement is already covered when a
// live worker's name contains the slugified specialization; uncovered
// requirements spawn concurrently, bounded by maxConcurrentSpawns. Any
// spawn failure fails the whole coordination, because the coverage
// guarantee cannot be given.
func (o *Orchestrator) CoordinateTask(ctx context.Context, task string, requiredSpecs []string, taskContext map[string]any) (*Coordination, error) {
	type requirement struct {
		archetype      core.Archetype
		specialization string
	}

	// Parse everything first so a malformed spec fails before any spawn.
	seen := make(map[requirement]struct{}, len(requiredSpecs))
	needs := make([]requirement, 0, len(requiredSpecs))
	for _, spec := range requiredSpecs {
		archetype := core.ArchetypeContentSpecialist
		specialization := strings.TrimSpace(spec)
		if before, after, ok := strings.Cut(spec, ":"); ok {
			parsed, err := core.ParseArchetype(strings.TrimSpace(before))
			if err != nil {
				return nil, fmt.Errorf("required spec %q: %w", spec, err)
			}
			archetype = parsed
			specialization = strings.TrimSpace(after)
		}
		if specialization == "" {
			return nil, fmt.Errorf("required spec %q: empty specialization", spec)
		}

		need := requirement{archetype: archetype, specialization: specialization}
		if _, ok := seen[need]; ok {
			continue
		}
		seen[need] = struct{}{}
		needs = append(needs, need)
	}

	names := o.pool.Names()
	involved := make(map[string]struct{}, len(needs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSpawns)
	for _, need := range needs {
		need := need
		g.Go(func() error {
			// Worker names embed specializations in slug form, so the
			// fragment must be slugified the same way before matching.
			if fragment := worker.Slugify(need.specialization); fragment != "" {
				for _, name := range names {
					if strings.Contains(name, fragment) {
						mu.Lock()
						involved[name] = struct{}{}
						mu.Unlock()
						return nil
					}
				}
			}

			handle, err := o.Spawn(gctx, need.archetype, need.specialization, taskContext, "")
			if err != nil {
				return fmt.Errorf("spawn %s:%s: %w", need.archetype, need.specialization, err)
			}
			mu.Lock()
			involved[handle.Name()] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("coordinate task: %w", err)
	}

	agents := make([]string, 0, len(involved))
	for name := range involved {
		agents = append(agents, name)
	}
	sort.Strings(agents)

	o.logger.Info("task coordinated", "task", prompt.Truncate(task, 80), "agents", len(agents))
	return &Coordination{
		Task:           task,
		AgentsInvolved: agents,
		Timestamp:      time.Now().UTC(),
		Status:         StatusCoordinated,
	}, nil
}

// IdentifyGaps reports which of the required capabilities no live worker
// declares, analyzed and sorted by importance.
func (o *Orchestrator) IdentifyGaps(ctx context.Context, required []string) []core.AgentGap {
	return o.discovery.IdentifyGaps(ctx, required, o.pool.CapabilitiesByWorker())
}

// EvaluateWorker evaluates the named worker's recent interactions.
func (o *Orchestrator) EvaluateWorker(ctx context.Context, name string) (*core.EvaluationResult, error) {
	handle, ok := o.pool.Get(name)
	if !ok {
		return nil, fmt.Errorf("evaluate worker: %q not found", name)
	}
	return o.factory.Evaluate(ctx, handle)
}

// Retire removes the named worker from the pool and reports whether it was
// present. Retirement is the only destruction path; retired handles stay
// valid for callers still holding them but receive no further work from the
// orchestrator.
func (o *Orchestrator) Retire(name string) bool {
	removed := o.pool.Remove(name)
	if removed {
		o.metrics.SetActiveWorkers(o.pool.Len())
		o.logger.Info("worker retired", "worker", name)
	}
	return removed
}

// Worker returns the named live worker.
func (o *Orchestrator) Worker(name string) (*worker.Handle, bool) {
	return o.pool.Get(name)
}

// WorkerNames returns the names of all live workers in sorted order.
func (o *Orchestrator) WorkerNames() []string {
	return o.pool.Names()
}

// PoolSize returns the number of live workers.
func (o *Orchestrator) PoolSize() int {
	return o.pool.Len()
}

// PendingRequests returns a copy of the queued spawn requests.
func (o *Orchestrator) PendingRequests() []core.SpawnRequest {
	return o.queue.PendingRequests()
}

// Catalog returns the archetype vocabulary this orchestrator reasons over.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Discovery returns the discovery engine, for access to analysis history.
func (o *Orchestrator) Discovery() *discovery.Engine {
	return o.discovery
}

// needLevelFor maps a recommendation priority to a queue need level.
func needLevelFor(p core.Priority) core.NeedLevel {
	switch p {
	case core.PriorityHigh:
		return core.NeedHigh
	case core.PriorityLow:
		return core.NeedLow
	default:
		return core.NeedMedium
	}
}
