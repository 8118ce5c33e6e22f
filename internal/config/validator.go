package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var (
	validUses       = []string{"signature", "sig", "encryption", "enc"}
	validKeyTypes   = []string{"RSA", "EC"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr"}
)

// validator collects every problem in one pass.
type validator struct {
	errors ValidationErrors
}

func (v *validator) addError(path, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks cfg and returns ValidationErrors listing every problem,
// or nil.
func Validate(cfg *Config) error {
	v := &validator{}
	if cfg == nil {
		v.addError("", "configuration is required")
		return v.errors
	}

	v.validateResolver(&cfg.Resolver)
	v.validateHTTP(&cfg.HTTP)
	v.validateLogging(&cfg.Logging)
	v.validateMetrics(&cfg.Metrics)
	v.validateTracing(&cfg.Tracing)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *validator) validateResolver(cfg *ResolverConfig) {
	if !containsFold(validUses, cfg.Use) {
		v.addError("resolver.use", "must be one of %s, got %q", strings.Join(validUses, ", "), cfg.Use)
	}

	if len(cfg.KeyTypes) == 0 {
		v.addError("resolver.keyTypes", "at least one key type is required")
	}
	for i, kty := range cfg.KeyTypes {
		if !contains(validKeyTypes, kty) {
			v.addError(fmt.Sprintf("resolver.keyTypes[%d]", i),
				"must be one of %s, got %q", strings.Join(validKeyTypes, ", "), kty)
		}
	}
}

func (v *validator) validateHTTP(cfg *HTTPConfig) {
	if cfg.Timeout <= 0 {
		v.addError("http.timeout", "must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		v.addError("http.maxBodyBytes", "must be positive")
	}

	retry := &cfg.Retry
	if retry.MaxRetries < 0 {
		v.addError("http.retry.maxRetries", "must not be negative")
	}
	if retry.InitialBackoff < 0 {
		v.addError("http.retry.initialBackoff", "must not be negative")
	}
	if retry.MaxBackoff < 0 {
		v.addError("http.retry.maxBackoff", "must not be negative")
	}
	if retry.InitialBackoff > 0 && retry.MaxBackoff > 0 && retry.MaxBackoff < retry.InitialBackoff {
		v.addError("http.retry.maxBackoff", "must not be less than initialBackoff")
	}
	if retry.JitterFactor < 0 || retry.JitterFactor > 1 {
		v.addError("http.retry.jitterFactor", "must be between 0 and 1")
	}

	cb := &cfg.CircuitBreaker
	if cb.Enabled {
		if cb.FailureThreshold == 0 {
			v.addError("http.circuitBreaker.failureThreshold", "must be at least 1")
		}
		if cb.Timeout <= 0 {
			v.addError("http.circuitBreaker.timeout", "must be positive")
		}
		if cb.Interval < 0 {
			v.addError("http.circuitBreaker.interval", "must not be negative")
		}
	}

	rl := &cfg.RateLimit
	if rl.Enabled {
		if rl.RPS <= 0 {
			v.addError("http.rateLimit.rps", "must be positive")
		}
		if rl.Burst < 1 {
			v.addError("http.rateLimit.burst", "must be at least 1")
		}
	}
}

func (v *validator) validateLogging(cfg *LoggingConfig) {
	if !contains(validLogLevels, cfg.Level) {
		v.addError("logging.level", "must be one of %s, got %q", strings.Join(validLogLevels, ", "), cfg.Level)
	}
	if !contains(validLogFormats, cfg.Format) {
		v.addError("logging.format", "must be one of %s, got %q", strings.Join(validLogFormats, ", "), cfg.Format)
	}
	if !contains(validLogOutputs, cfg.Output) {
		v.addError("logging.output", "must be one of %s, got %q", strings.Join(validLogOutputs, ", "), cfg.Output)
	}
}

func (v *validator) validateMetrics(cfg *MetricsConfig) {
	if cfg.Namespace != "" && !metricNamePattern.MatchString(cfg.Namespace) {
		v.addError("metrics.namespace", "must be a valid metric name prefix, got %q", cfg.Namespace)
	}
}

func (v *validator) validateTracing(cfg *TracingConfig) {
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		v.addError("tracing.samplingRate", "must be between 0 and 1")
	}
	if cfg.Enabled && cfg.ServiceName == "" {
		v.addError("tracing.serviceName", "is required when tracing is enabled")
	}
}

func contains(values []string, s string) bool {
	for _, value := range values {
		if value == s {
			return true
		}
	}
	return false
}

func containsFold(values []string, s string) bool {
	for _, value := range values {
		if strings.EqualFold(value, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
