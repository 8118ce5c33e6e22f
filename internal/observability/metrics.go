package observability

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Resolution outcomes used as the "outcome" label.
const (
	OutcomeFound    = "found"
	OutcomeDeclined = "declined"
	OutcomeError    = "error"
)

// Metrics holds Prometheus metrics for key resolution and key set fetching.
type Metrics struct {
	resolutionsTotal    *prometheus.CounterVec
	resolutionDuration  *prometheus.HistogramVec
	recordsDiscarded    *prometheus.CounterVec
	fetchTotal          *prometheus.CounterVec
	fetchDuration       prometheus.Histogram
	circuitBreakerState *prometheus.GaugeVec
	registry            *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "jwksfind"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total number of key resolutions by outcome",
		},
		[]string{"outcome"},
	)

	m.resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolution_duration_seconds",
			Help:      "Key resolution duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	m.recordsDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "records_discarded_total",
			Help:      "Total number of key set records discarded during selection",
		},
		[]string{"reason"},
	)

	m.fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of key set fetches by status",
		},
		[]string{"status"},
	)

	m.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Key set fetch duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	m.registry.MustRegister(m.collectors()...)

	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.resolutionsTotal,
		m.resolutionDuration,
		m.recordsDiscarded,
		m.fetchTotal,
		m.fetchDuration,
		m.circuitBreakerState,
	}
}

// Init pre-initializes the outcome labels so they are exported with zero
// values before the first resolution.
func (m *Metrics) Init() {
	for _, outcome := range []string{OutcomeFound, OutcomeDeclined, OutcomeError} {
		m.resolutionsTotal.WithLabelValues(outcome)
		m.resolutionDuration.WithLabelValues(outcome)
	}
}

// RecordResolution records a finished resolution.
func (m *Metrics) RecordResolution(outcome string, duration time.Duration) {
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
	m.resolutionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordDiscard records a key set record dropped for reason.
func (m *Metrics) RecordDiscard(reason string) {
	m.recordsDiscarded.WithLabelValues(reason).Inc()
}

// RecordFetch records a key set fetch. status is the HTTP status code, or
// "error" for transport failures.
func (m *Metrics) RecordFetch(status string, duration time.Duration) {
	m.fetchTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

// SetCircuitBreakerState records the state of the named circuit breaker.
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegister registers the metrics with another registry.
// AlreadyRegisteredError is silently ignored.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	for _, c := range m.collectors() {
		if err := registry.Register(c); err != nil {
			if !isAlreadyRegistered(err) {
				panic(err)
			}
		}
	}
}

// isAlreadyRegistered returns true if the error indicates the
// collector was already registered with the registry.
func isAlreadyRegistered(err error) bool {
	var are prometheus.AlreadyRegisteredError
	return errors.As(err, &are)
}

// WriteText writes a plain-text summary of every counter and gauge sample
// in the registry, one "name{labels} value" line per sample, sorted.
// Histograms are summarized by their sample count and sum.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				lines = append(lines,
					fmt.Sprintf("%s_count%s %d", mf.GetName(), formatLabels(metric.GetLabel()), h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %g", mf.GetName(), formatLabels(metric.GetLabel()), h.GetSampleSum()),
				)
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, lp := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
