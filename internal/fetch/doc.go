// Package fetch retrieves key set documents over HTTP.
//
// Fetcher is the collaborator the resolver depends on. HTTPFetcher is the
// production implementation; it caps response bodies, sets a User-Agent,
// propagates trace context, and can optionally retry transient failures,
// rate limit outbound requests, and trip a circuit breaker after repeated
// failures:
//
//	f := fetch.NewHTTPFetcher(fetch.Config{
//	    Retry: &retry.Config{MaxRetries: 2},
//	    RateLimit: fetch.RateLimitConfig{Enabled: true, RPS: 5, Burst: 5},
//	}, fetch.WithLogger(logger))
//
// Every status code is returned as a Response. An error means no response
// was obtained.
package fetch
