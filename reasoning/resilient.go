package reasoning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentforge/logging"
)

// Observer receives the outcome of each reasoning call for metrics export.
type Observer interface {
	ObserveReasoningCall(provider, outcome string, dur time.Duration)
}

// RetryConfig controls the exponential backoff applied between attempts.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// ResilientOptions configure the Resilient wrapper.
type ResilientOptions struct {
	// Timeout bounds every individual attempt. The caller's context still
	// bounds the call as a whole.
	Timeout time.Duration

	Retry RetryConfig

	// RatePerMinute throttles outgoing calls; zero or negative disables
	// the limiter.
	RatePerMinute float64
	RateBurst     int

	// DisableBreaker turns the circuit breaker off entirely.
	DisableBreaker bool

	Logger   logging.Logger
	Observer Observer
}

// Resilient wraps a Service with per-attempt timeouts, retries with
// exponential backoff and jitter, client-side rate limiting and a circuit
// breaker. Context cancellation is never retried.
type Resilient struct {
	inner    Service
	opts     ResilientOptions
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	logger   logging.Logger
	observer Observer
}

// NewResilient wraps inner with the default resilience profile: 30s attempt
// timeout, three retries starting at 100ms with factor 2.0 and ±25% jitter,
// 60 calls per minute with burst 10, breaker tripping at a 60% failure rate.
func NewResilient(inner Service, optFns ...func(o *ResilientOptions)) *Resilient {
	opts := ResilientOptions{
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			MaxRetries:    3,
			BaseDelay:     100 * time.Millisecond,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
			Jitter:        true,
		},
		RatePerMinute: 60,
		RateBurst:     10,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Resilient{
		inner:    inner,
		opts:     opts,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if r.logger == nil {
		r.logger = logging.NoOpLogger{}
	}

	if opts.RatePerMinute > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(opts.RatePerMinute/60.0), burst)
	}

	if !opts.DisableBreaker {
		r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "reasoning-" + inner.Provider(),
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				r.logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return r
}

// CompleteText implements Service.
func (r *Resilient) CompleteText(ctx context.Context, req Request) (*Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= r.opts.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.backoffDelay(attempt)); err != nil {
				return nil, err
			}
			r.logger.Debug("retrying reasoning call", "provider", r.inner.Provider(), "attempt", attempt)
		}

		resp, err := r.attempt(ctx, req)
		if err == nil {
			r.observe("success", time.Since(start))
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			r.observe("canceled", time.Since(start))
			return nil, fmt.Errorf("reasoning call canceled: %w", ctx.Err())
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.observe("breaker_open", time.Since(start))
			return nil, fmt.Errorf("reasoning service unavailable: %w", err)
		}
	}

	r.observe("error", time.Since(start))
	return nil, fmt.Errorf("reasoning call failed after %d attempts: %w", r.opts.Retry.MaxRetries+1, lastErr)
}

// Provider implements Service.
func (r *Resilient) Provider() string { return r.inner.Provider() }

func (r *Resilient) attempt(ctx context.Context, req Request) (*Response, error) {
	attemptCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	if r.breaker == nil {
		return r.inner.CompleteText(attemptCtx, req)
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.CompleteText(attemptCtx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// backoffDelay computes the delay before the given attempt (1-based).
func (r *Resilient) backoffDelay(attempt int) time.Duration {
	cfg := r.opts.Retry
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay *= 0.75 + rand.Float64()*0.5
	}
	return time.Duration(delay)
}

func (r *Resilient) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("reasoning call canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (r *Resilient) observe(outcome string, dur time.Duration) {
	if r.observer != nil {
		r.observer.ObserveReasoningCall(r.inner.Provider(), outcome, dur)
	}
}
