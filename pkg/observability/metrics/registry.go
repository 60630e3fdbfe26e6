package metrics

import (
	"strings"
	"sync"
)

// Registry holds a named set of metrics and renders them for scraping.
type Registry struct {
	metrics sync.Map // metric name -> Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry is the process-wide registry used by the package-level
// Register and Export helpers.
var DefaultRegistry = NewRegistry()

// Register adds m to the registry, replacing any metric with the same name.
func (r *Registry) Register(m Metric) {
	r.metrics.Store(m.Name(), m)
}

// Unregister removes the metric with the given name.
func (r *Registry) Unregister(name string) {
	r.metrics.Delete(name)
}

// Reset drops all registered metrics.
func (r *Registry) Reset() {
	r.metrics.Range(func(key, _ interface{}) bool {
		r.metrics.Delete(key)
		return true
	})
}

// Export renders every registered metric in Prometheus text format,
// sorted by metric name.
func (r *Registry) Export() string {
	var sb strings.Builder
	for _, name := range sortedKeys(&r.metrics) {
		if val, ok := r.metrics.Load(name); ok {
			sb.WriteString(val.(Metric).Describe())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Register adds m to the default registry.
func Register(m Metric) {
	DefaultRegistry.Register(m)
}

// Export renders the default registry in Prometheus text format.
func Export() string {
	return DefaultRegistry.Export()
}
