package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBreakerConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultBreakerConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(5), cfg.FailureThreshold)
}

func TestBreaker_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold uint32
		errs      []error
		wantState gobreaker.State
	}{
		{
			name:      "successes keep breaker closed",
			threshold: 2,
			errs:      []error{nil, nil, nil},
			wantState: gobreaker.StateClosed,
		},
		{
			name:      "consecutive failures open breaker",
			threshold: 2,
			errs:      []error{errors.New("a"), errors.New("b")},
			wantState: gobreaker.StateOpen,
		},
		{
			name:      "success resets consecutive count",
			threshold: 2,
			errs:      []error{errors.New("a"), nil, errors.New("b")},
			wantState: gobreaker.StateClosed,
		},
		{
			name:      "cancellation is not a failure",
			threshold: 1,
			errs:      []error{context.Canceled, context.Canceled},
			wantState: gobreaker.StateClosed,
		},
		{
			name:      "zero threshold trips on first failure",
			threshold: 0,
			errs:      []error{errors.New("a")},
			wantState: gobreaker.StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBreaker("test", BreakerConfig{
				Enabled:          true,
				Timeout:          time.Minute,
				FailureThreshold: tt.threshold,
			})

			for _, callErr := range tt.errs {
				_, _ = b.Execute(func() (*Response, error) {
					return nil, callErr
				})
			}

			assert.Equal(t, tt.wantState, b.State())
		})
	}
}

func TestBreaker_OpenRejectsWithoutCalling(t *testing.T) {
	t.Parallel()

	b := NewBreaker("jwks", BreakerConfig{Enabled: true, Timeout: time.Minute, FailureThreshold: 1})

	_, err := b.Execute(func() (*Response, error) {
		return nil, errors.New("down")
	})
	require.Error(t, err)

	called := false
	resp, err := b.Execute(func() (*Response, error) {
		called = true
		return &Response{StatusCode: 200}, nil
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "jwks")
	assert.False(t, called)
}

func TestBreaker_PassesResponseThrough(t *testing.T) {
	t.Parallel()

	b := NewBreaker("jwks", DefaultBreakerConfig())

	resp, err := b.Execute(func() (*Response, error) {
		return &Response{StatusCode: 200, Body: []byte("ok")}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}
