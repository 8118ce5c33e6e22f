package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/jwksfind/internal/observability"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures the fetch circuit breaker.
type BreakerConfig struct {
	Enabled bool

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval is the closed-state period after which counts are cleared.
	Interval time.Duration

	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns a disabled breaker configuration with
// usable values.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker wraps gobreaker.CircuitBreaker for key set fetches.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	logger  observability.Logger
	metrics *observability.Metrics
}

// BreakerOption is a functional option for configuring the breaker.
type BreakerOption func(*Breaker)

// WithBreakerLogger sets the logger for the breaker.
func WithBreakerLogger(logger observability.Logger) BreakerOption {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBreakerMetrics sets the metrics for the breaker.
func WithBreakerMetrics(metrics *observability.Metrics) BreakerOption {
	return func(b *Breaker) {
		b.metrics = metrics
	}
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(name string, cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			if b.metrics != nil {
				b.metrics.SetCircuitBreakerState(name, int(to))
			}
		},
		IsSuccessful: func(err error) bool {
			// Cancellation by the caller says nothing about the server.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	b.cb = gobreaker.NewCircuitBreaker(settings)
	if b.metrics != nil {
		b.metrics.SetCircuitBreakerState(name, int(gobreaker.StateClosed))
	}
	return b
}

// State returns the current state of the circuit breaker.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() (*Response, error)) (*Response, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, b.cb.Name())
	}

	resp, _ := result.(*Response)
	return resp, err
}
