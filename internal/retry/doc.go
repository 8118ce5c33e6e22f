// Package retry provides exponential backoff retry functionality for
// key set fetches.
//
// # Usage
//
//	cfg := &retry.Config{
//	    MaxRetries:     2,
//	    InitialBackoff: 200 * time.Millisecond,
//	    MaxBackoff:     2 * time.Second,
//	}
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//	    return fetchOnce(ctx)
//	}, &retry.Options{ShouldRetry: retry.IsTransient})
//
// A zero MaxRetries runs the operation exactly once. Cancelling the
// context stops further attempts and returns the last operation error,
// or the context error when no attempt was made.
package retry
