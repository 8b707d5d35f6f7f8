// Package resilience wraps store calls in circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = errors.New("store temporarily unavailable")

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing
	// counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before half-opening.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns 5 consecutive failures and a 30s cool-down.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker guards calls to one backing store.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker creates a breaker. State changes are logged and exported as
// the breaker state gauge (0 closed, 1 half-open, 2 open).
func NewBreaker(name string, config BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *Breaker {
	logger = observability.OrDefault(logger)
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// a cancelled caller says nothing about the store
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Gauge(observability.MetricBreakerState, float64(to), observability.T("breaker", name))
		},
	}

	return &Breaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string { return b.cb.State().String() }

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	_, err := Call(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Call runs fn through the breaker and returns its result.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}
