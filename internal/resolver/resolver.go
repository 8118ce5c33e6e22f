package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jwksfind/internal/fetch"
	"github.com/vyrodovalexey/jwksfind/internal/jwk"
	"github.com/vyrodovalexey/jwksfind/internal/observability"
)

// Reasons a record is discarded during selection.
const (
	discardMalformed   = "malformed"
	discardUse         = "use"
	discardAlg         = "alg"
	discardKeyType     = "kty"
	discardUnsupported = "unsupported_alg"
)

const (
	spanName         = "jwks.Resolve"
	acceptHeaderJSON = "application/json"
	schemeHTTPS      = "https"
	schemeHTTP       = "http"
)

// Resolver finds the public key of an entity in its published JWK Set.
// A Resolver is safe for concurrent use.
type Resolver struct {
	config   Config
	fetcher  fetch.Fetcher
	registry *jwk.Registry
	logger   observability.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// New creates a new resolver. Without options it fetches with a default
// HTTPFetcher, knows only RSA keys, and applies DefaultConfig.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		config: DefaultConfig(),
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.config.Use == "" {
		r.config.Use = UseSignature
	}
	if _, err := ParseUse(string(r.config.Use)); err != nil {
		return nil, err
	}

	if r.registry == nil {
		r.registry = jwk.NewDefaultRegistry()
	}
	if r.fetcher == nil {
		r.fetcher = fetch.NewHTTPFetcher(fetch.DefaultConfig(),
			fetch.WithLogger(r.logger),
			fetch.WithMetrics(r.metrics),
		)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(observability.TracerName)
	}

	return r, nil
}

// Config returns the resolver policy.
func (r *Resolver) Config() Config {
	return r.config
}

// Resolve returns the PEM-encoded public key of entity selected by
// criteria. An empty string with a nil error means the entity has no
// usable key set location and callers may try other means.
func (r *Resolver) Resolve(ctx context.Context, entity Entity, criteria Criteria) (string, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("jwks.url", entity.KeySetURL),
			attribute.String("jwks.alg", criteria.Algorithm),
			attribute.String("jwks.kid", criteria.KeyID),
		),
	)
	defer span.End()

	logger := r.logger.WithContext(ctx).With(
		observability.String("url", entity.KeySetURL),
		observability.String("alg", criteria.Algorithm),
	)

	pem, err := r.resolve(ctx, logger, entity, criteria)

	outcome := observability.OutcomeFound
	switch {
	case err != nil:
		outcome = observability.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("key resolution failed", observability.Error(err))
	case pem == "":
		outcome = observability.OutcomeDeclined
	}
	span.SetAttributes(attribute.String("jwks.outcome", outcome))

	if r.metrics != nil {
		r.metrics.RecordResolution(outcome, time.Since(start))
	}

	return pem, err
}

func (r *Resolver) resolve(
	ctx context.Context,
	logger observability.Logger,
	entity Entity,
	criteria Criteria,
) (string, error) {
	if entity.KeySetURL == "" {
		logger.Debug("entity has no key set url")
		return "", nil
	}

	if !r.schemeAllowed(entity.KeySetURL) {
		logger.Debug("key set url declined by transport policy",
			observability.Bool("secure", r.config.Secure),
		)
		return "", nil
	}

	use := r.config.Use
	if criteria.Use != "" {
		parsed, err := ParseUse(string(criteria.Use))
		if err != nil {
			return "", err
		}
		use = parsed
	}

	set, err := r.fetchSet(ctx, entity.KeySetURL)
	if err != nil {
		return "", err
	}

	for _, m := range set.Malformed {
		logger.Debug("key set record discarded",
			observability.String("reason", discardMalformed),
			observability.Error(m.Err),
		)
		r.recordDiscard(discardMalformed)
	}

	keys, err := r.candidates(logger, set, string(use), criteria.Algorithm)
	if err != nil {
		return "", err
	}

	key := selectKey(keys, criteria.KeyID)
	if key == nil {
		return "", ErrNoSuitableKey
	}

	logger.Debug("key selected", observability.String("kid", key.ID()))
	return key.Export()
}

// schemeAllowed applies the transport security policy. URLs that do not
// parse are declined like any other unacceptable scheme.
func (r *Resolver) schemeAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case schemeHTTPS:
		return true
	case schemeHTTP:
		return !r.config.Secure
	default:
		return false
	}
}

func (r *Resolver) fetchSet(ctx context.Context, keySetURL string) (*jwk.Set, error) {
	header := http.Header{}
	header.Set("Accept", acceptHeaderJSON)

	resp, err := r.fetcher.Fetch(ctx, keySetURL, header)
	if err != nil {
		return nil, &FetchError{URL: keySetURL, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: keySetURL}
	}

	set, err := jwk.ParseSet(resp.Body)
	if err != nil {
		return nil, &ParseError{URL: keySetURL, Cause: err}
	}
	return set, nil
}

// candidates returns the keys of set that may serve use and alg, in
// document order.
func (r *Resolver) candidates(
	logger observability.Logger,
	set *jwk.Set,
	use, alg string,
) ([]jwk.Key, error) {
	keys := make([]jwk.Key, 0, len(set.Keys))

	for i := range set.Keys {
		rec := &set.Keys[i]

		if rec.Use != "" && rec.Use != use {
			r.discard(logger, rec, discardUse)
			continue
		}
		if rec.Alg != "" && rec.Alg != alg {
			r.discard(logger, rec, discardAlg)
			continue
		}

		key, ok, err := r.registry.Create(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s key %q: %w", rec.Kty, rec.Kid, err)
		}
		if !ok {
			r.discard(logger, rec, discardKeyType)
			continue
		}

		if !key.SupportsAlgorithm(alg) {
			r.discard(logger, rec, discardUnsupported)
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (r *Resolver) discard(logger observability.Logger, rec *jwk.Record, reason string) {
	logger.Debug("key set record discarded",
		observability.String("reason", reason),
		observability.String("kty", rec.Kty),
		observability.String("kid", rec.Kid),
	)
	r.recordDiscard(reason)
}

func (r *Resolver) recordDiscard(reason string) {
	if r.metrics != nil {
		r.metrics.RecordDiscard(reason)
	}
}

// selectKey prefers the identified key matching kid and otherwise falls
// back to the first key.
func selectKey(keys []jwk.Key, kid string) jwk.Key {
	if len(keys) == 0 {
		return nil
	}

	if kid != "" {
		for _, key := range keys {
			if key.ID() == kid {
				return key
			}
		}
	}

	return keys[0]
}
