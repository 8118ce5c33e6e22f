package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, "signature", cfg.Resolver.Use)
	assert.True(t, cfg.Resolver.Secure)
	assert.Equal(t, []string{"RSA"}, cfg.Resolver.KeyTypes)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout.Duration())
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 0, cfg.HTTP.Retry.MaxRetries)
	assert.False(t, cfg.HTTP.CircuitBreaker.Enabled)
	assert.False(t, cfg.HTTP.RateLimit.Enabled)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "jwksfind", cfg.Metrics.Namespace)
	assert.Equal(t, 1.0, cfg.Tracing.SamplingRate)

	assert.NoError(t, Validate(cfg))
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "partial override",
			yaml: `
resolver:
  use: encryption
  secure: false
  keyTypes: [RSA, EC]
http:
  timeout: 5s
  retry:
    maxRetries: 2
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "encryption", cfg.Resolver.Use)
				assert.False(t, cfg.Resolver.Secure)
				assert.Equal(t, []string{"RSA", "EC"}, cfg.Resolver.KeyTypes)
				assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout.Duration())
				assert.Equal(t, 2, cfg.HTTP.Retry.MaxRetries)
				// Untouched members keep defaults.
				assert.Equal(t, 100*time.Millisecond, cfg.HTTP.Retry.InitialBackoff.Duration())
				assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "full document",
			yaml: `
resolver:
  use: sig
  secure: true
  keyTypes: [EC]
http:
  timeout: 10s
  maxBodyBytes: 4096
  userAgent: custom/1.0
  retry: { maxRetries: 3, initialBackoff: 50ms, maxBackoff: 1s, jitterFactor: 0.5 }
  circuitBreaker: { enabled: true, maxRequests: 2, interval: 30s, timeout: 10s, failureThreshold: 3 }
  rateLimit: { enabled: true, rps: 2.5, burst: 4 }
logging: { level: debug, format: console, output: stdout }
metrics: { enabled: true, namespace: keys }
tracing: { enabled: true, serviceName: svc, otlpEndpoint: "localhost:4317", samplingRate: 0.5 }
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "custom/1.0", cfg.HTTP.UserAgent)
				assert.Equal(t, 0.5, cfg.HTTP.Retry.JitterFactor)
				assert.Equal(t, CircuitBreakerConfig{
					Enabled:          true,
					MaxRequests:      2,
					Interval:         Duration(30 * time.Second),
					Timeout:          Duration(10 * time.Second),
					FailureThreshold: 3,
				}, cfg.HTTP.CircuitBreaker)
				assert.Equal(t, RateLimitConfig{Enabled: true, RPS: 2.5, Burst: 4}, cfg.HTTP.RateLimit)
				assert.Equal(t, LoggingConfig{Level: "debug", Format: "console", Output: "stdout"}, cfg.Logging)
				assert.Equal(t, MetricsConfig{Enabled: true, Namespace: "keys"}, cfg.Metrics)
				assert.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
			},
		},
		{
			name:    "unknown member",
			yaml:    "resolver:\n  usage: sig\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "invalid yaml",
			yaml:    "resolver: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "invalid duration",
			yaml:    "http:\n  timeout: soon\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "invalid values are validated",
			yaml:    "resolver:\n  use: verify\n",
			wantErr: "resolver.use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParse_EnvSubstitution(t *testing.T) {
	t.Setenv("JWKSFIND_TEST_USE", "encryption")
	t.Setenv("JWKSFIND_TEST_EMPTY", "")

	cfg, err := Parse([]byte(`
resolver:
  use: ${JWKSFIND_TEST_USE}
  secure: ${JWKSFIND_TEST_UNSET_SECURE:-false}
http:
  userAgent: "agent$$1${JWKSFIND_TEST_EMPTY}"
`))
	require.NoError(t, err)

	assert.Equal(t, "encryption", cfg.Resolver.Use)
	assert.False(t, cfg.Resolver.Secure)
	assert.Equal(t, "agent$1", cfg.HTTP.UserAgent)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("JWKSFIND_TEST_VALUE", "set")

	tests := []struct {
		input string
		want  string
	}{
		{input: "${JWKSFIND_TEST_VALUE}", want: "set"},
		{input: "${JWKSFIND_TEST_VALUE:-other}", want: "set"},
		{input: "${JWKSFIND_TEST_MISSING:-fallback}", want: "fallback"},
		{input: "${JWKSFIND_TEST_MISSING}", want: ""},
		{input: "$${JWKSFIND_TEST_VALUE}", want: "${JWKSFIND_TEST_VALUE}"},
		{input: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, substituteEnvVars(tt.input), "input %q", tt.input)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "jwksfind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging:\n  level: loud\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	var verrs ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader("metrics:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	t.Run("yaml round trip", func(t *testing.T) {
		t.Parallel()

		out, err := yaml.Marshal(struct {
			D Duration `yaml:"d"`
		}{D: Duration(90 * time.Second)})
		require.NoError(t, err)
		assert.Equal(t, "d: 1m30s\n", string(out))

		var in struct {
			D Duration `yaml:"d"`
		}
		require.NoError(t, yaml.Unmarshal(out, &in))
		assert.Equal(t, 90*time.Second, in.D.Duration())
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			input string
			want  time.Duration
			err   bool
		}{
			{input: `"250ms"`, want: 250 * time.Millisecond},
			{input: `""`, want: 0},
			{input: `null`, want: 0},
			{input: `"bogus"`, err: true},
		}

		for _, tt := range tests {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.err {
				assert.Error(t, err, tt.input)
				continue
			}
			require.NoError(t, err, tt.input)
			assert.Equal(t, tt.want, d.Duration(), tt.input)
		}

		out, err := json.Marshal(Duration(2 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, `"2s"`, string(out))
	})
}
