package config

import "time"

// Config is the root configuration of the resolver command.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
}

// ResolverConfig contains key selection policy.
type ResolverConfig struct {
	// Use is the key use to match: signature, encryption, sig or enc.
	Use string `yaml:"use" json:"use"`

	// Secure restricts key set URLs to https.
	Secure bool `yaml:"secure" json:"secure"`

	// KeyTypes lists the key types the resolver can build (RSA, EC).
	KeyTypes []string `yaml:"keyTypes" json:"keyTypes"`
}

// HTTPConfig contains key set fetch settings.
type HTTPConfig struct {
	Timeout        Duration             `yaml:"timeout" json:"timeout"`
	MaxBodyBytes   int64                `yaml:"maxBodyBytes" json:"maxBodyBytes"`
	UserAgent      string               `yaml:"userAgent,omitempty" json:"userAgent,omitempty"`
	Retry          RetryConfig          `yaml:"retry" json:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`
	RateLimit      RateLimitConfig      `yaml:"rateLimit" json:"rateLimit"`
}

// RetryConfig contains retry settings for key set fetches.
type RetryConfig struct {
	MaxRetries     int      `yaml:"maxRetries" json:"maxRetries"`
	InitialBackoff Duration `yaml:"initialBackoff" json:"initialBackoff"`
	MaxBackoff     Duration `yaml:"maxBackoff" json:"maxBackoff"`
	JitterFactor   float64  `yaml:"jitterFactor" json:"jitterFactor"`
}

// CircuitBreakerConfig contains circuit breaker settings.
type CircuitBreakerConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	MaxRequests      uint32   `yaml:"maxRequests" json:"maxRequests"`
	Interval         Duration `yaml:"interval" json:"interval"`
	Timeout          Duration `yaml:"timeout" json:"timeout"`
	FailureThreshold uint32   `yaml:"failureThreshold" json:"failureThreshold"`
}

// RateLimitConfig contains outbound rate limit settings.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	RPS     float64 `yaml:"rps" json:"rps"`
	Burst   int     `yaml:"burst" json:"burst"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig contains tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
}

// DefaultConfig returns a configuration with every field set.
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Use:      "signature",
			Secure:   true,
			KeyTypes: []string{"RSA"},
		},
		HTTP: HTTPConfig{
			Timeout:      Duration(30 * time.Second),
			MaxBodyBytes: 1 << 20,
			Retry: RetryConfig{
				MaxRetries:     0,
				InitialBackoff: Duration(100 * time.Millisecond),
				MaxBackoff:     Duration(5 * time.Second),
				JitterFactor:   0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          false,
				MaxRequests:      1,
				Interval:         Duration(60 * time.Second),
				Timeout:          Duration(30 * time.Second),
				FailureThreshold: 5,
			},
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     10,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "jwksfind",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "jwksfind",
			SamplingRate: 1.0,
		},
	}
}
