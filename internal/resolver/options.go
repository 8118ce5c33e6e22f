package resolver

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jwksfind/internal/fetch"
	"github.com/vyrodovalexey/jwksfind/internal/jwk"
	"github.com/vyrodovalexey/jwksfind/internal/observability"
)

// Option is a functional option for configuring the resolver.
type Option func(*Resolver)

// WithConfig sets the resolver policy.
func WithConfig(cfg Config) Option {
	return func(r *Resolver) {
		r.config = cfg
	}
}

// WithFetcher sets the HTTP collaborator used to retrieve key sets.
func WithFetcher(fetcher fetch.Fetcher) Option {
	return func(r *Resolver) {
		r.fetcher = fetcher
	}
}

// WithRegistry sets the key type registry.
func WithRegistry(registry *jwk.Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithLogger sets the logger for the resolver.
func WithLogger(logger observability.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics for the resolver.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// WithTracer sets the tracer for the resolver.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = tracer
	}
}
