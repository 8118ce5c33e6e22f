package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/jwksfind/internal/observability"
	"github.com/vyrodovalexey/jwksfind/internal/retry"
)

// Defaults for HTTPFetcher.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	DefaultUserAgent    = "jwksfind"
)

// ErrBodyTooLarge is returned when a response body exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Response is the result of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a document over HTTP. A non-nil error means no
// response was obtained; any status code is returned as a Response.
type Fetcher interface {
	Fetch(ctx context.Context, url string, header http.Header) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, header http.Header) (*Response, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string, header http.Header) (*Response, error) {
	return f(ctx, url, header)
}

// RateLimitConfig configures the outbound request rate.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Config configures an HTTPFetcher.
type Config struct {
	Timeout        time.Duration
	MaxBodyBytes   int64
	UserAgent      string
	Retry          *retry.Config
	CircuitBreaker BreakerConfig
	RateLimit      RateLimitConfig
}

// DefaultConfig returns a configuration with retries, circuit breaking,
// and rate limiting disabled.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		UserAgent:      DefaultUserAgent,
		Retry:          retry.DefaultConfig(),
		CircuitBreaker: DefaultBreakerConfig(),
	}
}

// HTTPFetcher fetches documents with net/http.
type HTTPFetcher struct {
	client  *http.Client
	config  Config
	breaker *Breaker
	limiter *rate.Limiter
	logger  observability.Logger
	metrics *observability.Metrics
}

// Option is a functional option for configuring the fetcher.
type Option func(*HTTPFetcher)

// WithLogger sets the logger for the fetcher.
func WithLogger(logger observability.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// WithMetrics sets the metrics for the fetcher.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(f *HTTPFetcher) {
		f.metrics = metrics
	}
}

// WithHTTPClient replaces the HTTP client. Config.Timeout is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg Config, opts ...Option) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	f := &HTTPFetcher{
		config: cfg,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: cfg.Timeout}
	}

	if cfg.CircuitBreaker.Enabled {
		f.breaker = NewBreaker("jwks", cfg.CircuitBreaker,
			WithBreakerLogger(f.logger),
			WithBreakerMetrics(f.metrics),
		)
	}

	if cfg.RateLimit.Enabled {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	return f
}

// serverError marks a 5xx response so it is retried and counted as a
// breaker failure. It never leaves Fetch.
type serverError struct {
	resp *Response
}

func (e *serverError) Error() string {
	return "server error: status " + strconv.Itoa(e.resp.StatusCode)
}

func shouldRetry(err error) bool {
	var se *serverError
	if errors.As(err, &se) {
		return true
	}
	return retry.IsTransient(err)
}

// Fetch performs a GET request for url with the given headers. Transport
// errors and 5xx responses are retried when retries are configured.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, header http.Header) (*Response, error) {
	start := time.Now()
	logger := f.logger.WithContext(ctx)

	var resp *Response
	err := retry.Do(ctx, f.config.Retry, func(ctx context.Context) error {
		r, err := f.attempt(ctx, url, header)
		resp = r
		return err
	}, &retry.Options{
		ShouldRetry: shouldRetry,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			logger.Debug("retrying key set fetch",
				observability.String("url", url),
				observability.Int("attempt", attempt),
				observability.Duration("backoff", backoff),
				observability.Error(err),
			)
		},
	})

	var se *serverError
	if errors.As(err, &se) {
		resp, err = se.resp, nil
	}

	duration := time.Since(start)
	if err != nil {
		f.recordFetch("error", duration)
		logger.Debug("key set fetch failed",
			observability.String("url", url),
			observability.Error(err),
		)
		return nil, err
	}

	f.recordFetch(strconv.Itoa(resp.StatusCode), duration)
	logger.Debug("key set fetched",
		observability.String("url", url),
		observability.Int("status", resp.StatusCode),
		observability.Int("bytes", len(resp.Body)),
		observability.Duration("duration", duration),
	)
	return resp, nil
}

func (f *HTTPFetcher) attempt(ctx context.Context, url string, header http.Header) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if f.breaker != nil {
		return f.breaker.Execute(func() (*Response, error) {
			return f.do(ctx, url, header)
		})
	}
	return f.do(ctx, url, header)
}

func (f *HTTPFetcher) do(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}
	observability.InjectTraceContext(ctx, req)

	httpResp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, f.config.MaxBodyBytes)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Body: body}
	if retry.IsRetryableStatus(resp.StatusCode) {
		return resp, &serverError{resp: resp}
	}
	return resp, nil
}

func (f *HTTPFetcher) recordFetch(status string, duration time.Duration) {
	if f.metrics != nil {
		f.metrics.RecordFetch(status, duration)
	}
}
