// Package metrics implements a small dependency-free metrics registry
// exposing counters, gauges and histograms in Prometheus text format.
// The HTTP middleware layer registers its request metrics here and the
// /metrics endpoint renders the registry via Export.
package metrics

// MetricType identifies the Prometheus metric family of a Metric.
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Metric is implemented by every metric kind.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Describe renders the metric in Prometheus exposition format,
	// including its HELP and TYPE header lines.
	Describe() string
}

// Counter is a monotonically increasing value. Add ignores negative deltas.
type Counter interface {
	Metric
	Inc()
	Add(float64)
	Get() float64
}

// Gauge is a value that can move in both directions.
type Gauge interface {
	Metric
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
	Get() float64
}

// Histogram counts observations into configurable buckets.
type Histogram interface {
	Metric
	Observe(float64)
}

// Vector groups metrics sharing a name but carrying different label sets.
type Vector interface {
	Metric
	// WithLabels returns the child metric for the given label values.
	WithLabels(labels map[string]string) Metric
}

// CounterVec is a labelled family of counters.
type CounterVec interface {
	Vector
	With(labels map[string]string) Counter
}

// HistogramVec is a labelled family of histograms.
type HistogramVec interface {
	Vector
	With(labels map[string]string) Histogram
}
