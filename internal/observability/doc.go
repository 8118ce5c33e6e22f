// Package observability provides logging, metrics, and tracing for key
// resolution.
//
// # Logging
//
// Logger is a thin interface over zap. Components accept it through
// functional options and default to NopLogger:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "debug",
//	    Format: "console",
//	})
//
// WithContext adds the request ID stored by ContextWithRequestID and the
// trace and span IDs of the active span.
//
// # Metrics
//
// Metrics owns a private Prometheus registry. Resolution outcomes are
// recorded with the labels OutcomeFound, OutcomeDeclined, and OutcomeError.
//
// # Tracing
//
// NewTracer installs an OpenTelemetry SDK provider exporting over OTLP gRPC
// when enabled, and returns a tracer backed by the global provider when not.
package observability
