// Package agentforge provides a high-level façade over the orchestration
// core (catalog, discovery, worker factory & orchestrator) enabling rapid
// construction of self-extending agent ecosystems. Most applications
// interact with this package by:
//  1. Creating an AgentForge via New() with a reasoning service (OpenAI,
//     Anthropic or a mock)
//  2. Letting discussion monitoring and task discovery spawn specialists,
//     or coordinating tasks directly via CoordinateTask
//  3. Watching ecosystem health and processing the request queue
//
// The façade delegates coordination to orchestrator.Orchestrator while
// keeping setup ergonomics concise. Unless disabled, the reasoning service
// is wrapped with timeout, retry, rate-limit and circuit-breaker middleware
// configured from Config; defaults are safe for local development and
// testing.
package agentforge

import (
	"context"

	"github.com/hupe1980/agentforge/config"
	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/metrics"
	"github.com/hupe1980/agentforge/orchestrator"
	"github.com/hupe1980/agentforge/reasoning"
	"github.com/hupe1980/agentforge/worker"
)

// Options configures the AgentForge instance.
type Options struct {
	// Config supplies thresholds, retry budgets and sizing.
	// Defaults to config.Default().
	Config *config.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Metrics enables prometheus collection across the whole stack,
	// including the resilience middleware. Optional.
	Metrics *metrics.Metrics

	// DisableResilience skips wrapping the service in timeout, retry,
	// rate-limit and circuit-breaker middleware. Useful with mock services
	// in tests, where retries only obscure failures.
	DisableResilience bool
}

// AgentForge is the high-level façade aggregating the orchestrator and the
// resilience middleware around the reasoning service.
type AgentForge struct {
	opts         Options
	service      reasoning.Service
	orchestrator *orchestrator.Orchestrator
}

// New creates an AgentForge instance over the given reasoning service with
// optional overrides. The service is wrapped per Config unless resilience
// is disabled; the orchestrator, factory, discovery engine and catalog are
// all built with shared defaults.
func New(service reasoning.Service, optFns ...func(o *Options)) *AgentForge {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if !opts.DisableResilience {
		cfg := opts.Config
		service = reasoning.NewResilient(service, func(ro *reasoning.ResilientOptions) {
			ro.Timeout = cfg.RequestTimeout
			ro.Retry.MaxRetries = cfg.MaxRetries
			ro.Retry.BaseDelay = cfg.RetryBaseDelay
			ro.RatePerMinute = cfg.RateLimitPerMinute
			ro.RateBurst = cfg.RateLimitBurst
			ro.Logger = opts.Logger
			if opts.Metrics != nil {
				ro.Observer = opts.Metrics
			}
		})
	}

	orch := orchestrator.New(service, func(oo *orchestrator.Options) {
		oo.Config = opts.Config
		oo.Logger = opts.Logger
		oo.Metrics = opts.Metrics
	})

	return &AgentForge{opts: opts, service: service, orchestrator: orch}
}

// Service returns the reasoning service as the orchestration core sees it,
// including any resilience middleware.
func (f *AgentForge) Service() reasoning.Service { return f.service }

// Spawn creates a specialist worker under a generated name.
func (f *AgentForge) Spawn(ctx context.Context, archetype core.Archetype, specialization string, taskContext map[string]any) (*worker.Handle, error) {
	return f.orchestrator.Spawn(ctx, archetype, specialization, taskContext, "")
}

// SubmitRequest queues a spawn request for later processing.
func (f *AgentForge) SubmitRequest(req core.SpawnRequest) error {
	return f.orchestrator.SubmitRequest(req)
}

// ProcessRequests drains and spawns every auto-approvable queued request.
func (f *AgentForge) ProcessRequests(ctx context.Context) ([]*worker.Handle, error) {
	return f.orchestrator.ProcessRequests(ctx)
}

// MonitorDiscussion analyzes a discussion and spawns or queues a missing
// specialist according to the auto-spawn threshold.
func (f *AgentForge) MonitorDiscussion(ctx context.Context, d orchestrator.Discussion) (*orchestrator.MonitorResult, error) {
	return f.orchestrator.MonitorDiscussion(ctx, d)
}

// RunDiscovery analyzes a task and spawns or queues the recommended workers.
func (f *AgentForge) RunDiscovery(ctx context.Context, task string, taskContext map[string]any) (*orchestrator.DiscoveryOutcome, error) {
	return f.orchestrator.RunDiscovery(ctx, task, taskContext)
}

// EvaluateEcosystem computes the local health snapshot of the worker pool.
func (f *AgentForge) EvaluateEcosystem() *orchestrator.EcosystemReport {
	return f.orchestrator.EvaluateEcosystem()
}

// OptimizePool asks the reasoning service for a restructuring plan and
// applies it when its priority is high.
func (f *AgentForge) OptimizePool(ctx context.Context) (*orchestrator.OptimizationReport, error) {
	return f.orchestrator.OptimizePool(ctx)
}

// CoordinateTask ensures every required spec has a live worker, spawning
// the missing ones.
func (f *AgentForge) CoordinateTask(ctx context.Context, task string, requiredSpecs []string, taskContext map[string]any) (*orchestrator.Coordination, error) {
	return f.orchestrator.CoordinateTask(ctx, task, requiredSpecs, taskContext)
}

// EvaluateWorker evaluates the named worker's recent interactions.
func (f *AgentForge) EvaluateWorker(ctx context.Context, name string) (*core.EvaluationResult, error) {
	return f.orchestrator.EvaluateWorker(ctx, name)
}

// Retire removes the named worker from the pool.
func (f *AgentForge) Retire(name string) bool {
	return f.orchestrator.Retire(name)
}

// Worker returns the named live worker.
func (f *AgentForge) Worker(name string) (*worker.Handle, bool) {
	return f.orchestrator.Worker(name)
}

// Workers returns the names of all live workers in sorted order.
func (f *AgentForge) Workers() []string {
	return f.orchestrator.WorkerNames()
}

// PoolSize returns the number of live workers.
func (f *AgentForge) PoolSize() int {
	return f.orchestrator.PoolSize()
}

// PendingRequests returns a copy of the queued spawn requests.
func (f *AgentForge) PendingRequests() []core.SpawnRequest {
	return f.orchestrator.PendingRequests()
}
