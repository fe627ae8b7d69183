// Package resilience wraps outbound calls with retries and per-operation
// circuit breakers. The AI providers, Meilisearch and NATS all funnel
// through one Executor so failure policy lives in a single place.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrorClassification tells the executor how to treat a failure: whether
// another attempt makes sense and whether the breaker should count it.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

// Executor owns one circuit breaker per named operation, created lazily
// on first use.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.withDefaults(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs fn under the retry schedule and, when enabled, the breaker
// registered for operation.
func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify ErrorClassifier,
) error {
	if fn == nil {
		return errors.New("resilience: nil operation")
	}
	name := strings.TrimSpace(operation)
	if name == "" {
		name = "unknown"
	}
	if classify == nil {
		classify = recordOnly
	}

	if !e.cfg.BreakerEnabled {
		return e.retry(ctx, name, fn, classify)
	}
	_, err := e.breakerFor(name, classify).Execute(func() (any, error) {
		return nil, e.retry(ctx, name, fn, classify)
	})
	return err
}

func (e *Executor) retry(
	ctx context.Context,
	name string,
	fn func(context.Context) error,
	classify ErrorClassifier,
) error {
	delay := e.cfg.RetryInitialBackoff

	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !classify(err).Retryable || attempt >= e.cfg.RetryMaxAttempts {
			return err
		}

		slog.Warn("operation_retry",
			"operation", name,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"delay", delay.String(),
			"error", err,
		)
		if !sleepContext(ctx, delay) {
			return err
		}
		delay = min(time.Duration(float64(delay)*e.cfg.RetryMultiplier), e.cfg.RetryMaxBackoff)
	}
}

func (e *Executor) breakerFor(name string, classify ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[name]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= e.cfg.BreakerMinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).RecordFailure
		},
		OnStateChange: func(op string, from, to gobreaker.State) {
			slog.Warn("breaker_state_change", "operation", op, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[name] = b
	return b
}

// IsCircuitOpen reports whether err came from a breaker refusing the call.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// sleepContext waits for d, reporting false when the context ends first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func recordOnly(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}
