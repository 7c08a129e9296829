package ports

import "context"

// Metric names recorded by the overlay engine.
const (
	// MetricTransitions counts lifecycle transitions, labelled from/to.
	MetricTransitions = "floatkit_overlay_transitions_total"
	// MetricMeasureTimeouts counts retry loops that gave up.
	MetricMeasureTimeouts = "floatkit_measure_timeouts_total"
	// MetricMeasureAttempts observes how many rounds a successful loop needed.
	MetricMeasureAttempts = "floatkit_measure_attempts"
)

// MetricsCollector records quantitative observability signals. The interface is
// intentionally generic so adapters can back onto Prometheus, StatsD, or an
// in-memory store.
type MetricsCollector interface {
	IncCounter(ctx context.Context, name string, labels map[string]string)
	SetGauge(ctx context.Context, name string, value float64, labels map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string)
}
