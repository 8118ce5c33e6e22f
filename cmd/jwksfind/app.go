package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vyrodovalexey/jwksfind/internal/config"
	"github.com/vyrodovalexey/jwksfind/internal/fetch"
	"github.com/vyrodovalexey/jwksfind/internal/jwk"
	"github.com/vyrodovalexey/jwksfind/internal/observability"
	"github.com/vyrodovalexey/jwksfind/internal/resolver"
	"github.com/vyrodovalexey/jwksfind/internal/retry"
)

const tracerShutdownTimeout = 5 * time.Second

// application holds all application components.
type application struct {
	resolver *resolver.Resolver
	metrics  *observability.Metrics
	tracer   *observability.Tracer
}

// initApplication initializes all application components.
func initApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metrics.Init()
	}

	registry, err := buildRegistry(cfg.Resolver.KeyTypes)
	if err != nil {
		return nil, err
	}

	use, err := resolver.ParseUse(cfg.Resolver.Use)
	if err != nil {
		return nil, err
	}

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Enabled:      cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	fetcher := fetch.NewHTTPFetcher(buildFetchConfig(&cfg.HTTP),
		fetch.WithLogger(logger),
		fetch.WithMetrics(metrics),
	)

	r, err := resolver.New(
		resolver.WithConfig(resolver.Config{Use: use, Secure: cfg.Resolver.Secure}),
		resolver.WithFetcher(fetcher),
		resolver.WithRegistry(registry),
		resolver.WithLogger(logger),
		resolver.WithMetrics(metrics),
		resolver.WithTracer(tracer.Tracer()),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("resolver initialized",
		observability.String("use", string(use)),
		observability.Bool("secure", cfg.Resolver.Secure),
		observability.Strings("key_types", registry.Types()),
	)

	return &application{
		resolver: r,
		metrics:  metrics,
		tracer:   tracer,
	}, nil
}

// buildRegistry registers the factories for the configured key types.
func buildRegistry(keyTypes []string) (*jwk.Registry, error) {
	registry := jwk.NewRegistry()
	for _, kty := range keyTypes {
		switch kty {
		case jwk.KeyTypeRSA:
			jwk.RegisterRSA(registry)
		case jwk.KeyTypeEC:
			jwk.RegisterEC(registry)
		default:
			return nil, fmt.Errorf("unsupported key type %q", kty)
		}
	}
	return registry, nil
}

// buildFetchConfig converts the HTTP configuration section.
func buildFetchConfig(cfg *config.HTTPConfig) fetch.Config {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fetch.DefaultUserAgent + "/" + version
	}

	return fetch.Config{
		Timeout:      cfg.Timeout.Duration(),
		MaxBodyBytes: cfg.MaxBodyBytes,
		UserAgent:    userAgent,
		Retry: &retry.Config{
			MaxRetries:     cfg.Retry.MaxRetries,
			InitialBackoff: cfg.Retry.InitialBackoff.Duration(),
			MaxBackoff:     cfg.Retry.MaxBackoff.Duration(),
			JitterFactor:   cfg.Retry.JitterFactor,
		},
		CircuitBreaker: fetch.BreakerConfig{
			Enabled:          cfg.CircuitBreaker.Enabled,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval.Duration(),
			Timeout:          cfg.CircuitBreaker.Timeout.Duration(),
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
		},
		RateLimit: fetch.RateLimitConfig{
			Enabled: cfg.RateLimit.Enabled,
			RPS:     cfg.RateLimit.RPS,
			Burst:   cfg.RateLimit.Burst,
		},
	}
}

// writeMetrics writes collected metrics in text exposition format.
func (a *application) writeMetrics(w io.Writer, logger observability.Logger) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.WriteText(w); err != nil {
		logger.Warn("failed to write metrics", observability.Error(err))
	}
}

// shutdown flushes pending spans.
func (a *application) shutdown(logger observability.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	if err := a.tracer.Shutdown(ctx); err != nil {
		logger.Warn("failed to shut down tracer", observability.Error(err))
	}
}
