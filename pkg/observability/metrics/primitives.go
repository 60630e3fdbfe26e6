package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// atomicFloat stores a float64 as raw bits for lock-free updates.
type atomicFloat struct {
	bits uint64
}

func (f *atomicFloat) load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&f.bits))
}

func (f *atomicFloat) store(v float64) {
	atomic.StoreUint64(&f.bits, math.Float64bits(v))
}

func (f *atomicFloat) add(v float64) {
	for {
		old := atomic.LoadUint64(&f.bits)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&f.bits, old, next) {
			return
		}
	}
}

type baseMetric struct {
	name string
	help string
	typ  MetricType
}

func (m *baseMetric) Name() string     { return m.name }
func (m *baseMetric) Help() string     { return m.help }
func (m *baseMetric) Type() MetricType { return m.typ }

func (m *baseMetric) header() string {
	return fmt.Sprintf("# HELP %s %s\n# TYPE %s %s\n", m.name, m.help, m.name, m.typ)
}

type counter struct {
	baseMetric
	val atomicFloat
}

// NewCounter creates a counter with the given name and help text.
func NewCounter(name, help string) Counter {
	return &counter{baseMetric: baseMetric{name: name, help: help, typ: TypeCounter}}
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(v float64) {
	if v < 0 {
		return
	}
	c.val.add(v)
}

func (c *counter) Get() float64 { return c.val.load() }

func (c *counter) Describe() string {
	return fmt.Sprintf("%s%s %.6f\n", c.header(), c.name, c.Get())
}

type gauge struct {
	baseMetric
	val atomicFloat
}

// NewGauge creates a gauge with the given name and help text.
func NewGauge(name, help string) Gauge {
	return &gauge{baseMetric: baseMetric{name: name, help: help, typ: TypeGauge}}
}

func (g *gauge) Set(v float64) { g.val.store(v) }
func (g *gauge) Inc()          { g.val.add(1) }
func (g *gauge) Dec()          { g.val.add(-1) }
func (g *gauge) Add(v float64) { g.val.add(v) }
func (g *gauge) Sub(v float64) { g.val.add(-v) }
func (g *gauge) Get() float64  { return g.val.load() }

func (g *gauge) Describe() string {
	return fmt.Sprintf("%s%s %.6f\n", g.header(), g.name, g.Get())
}

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type histogram struct {
	baseMetric
	buckets []float64
	sum     atomicFloat
	count   uint64

	mu     sync.RWMutex
	counts []uint64
}

// NewHistogram creates a histogram with the given bucket upper bounds.
// Passing no buckets selects a default set suited to request latencies
// in seconds.
func NewHistogram(name, help string, buckets []float64) Histogram {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	sort.Float64s(buckets)
	return &histogram{
		baseMetric: baseMetric{name: name, help: help, typ: TypeHistogram},
		buckets:    buckets,
		counts:     make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(v float64) {
	atomic.AddUint64(&h.count, 1)
	h.sum.add(v)

	// bucket counts are cumulative, every bucket >= v is incremented
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, upper := range h.buckets {
		if v <= upper {
			h.counts[i]++
		}
	}
}

func (h *histogram) Describe() string {
	var sb strings.Builder
	sb.WriteString(h.header())

	h.mu.RLock()
	defer h.mu.RUnlock()

	for i, upper := range h.buckets {
		fmt.Fprintf(&sb, "%s_bucket{le=%q} %d\n", h.name, formatBound(upper), h.counts[i])
	}
	total := atomic.LoadUint64(&h.count)
	fmt.Fprintf(&sb, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(&sb, "%s_sum %.6f\n", h.name, h.sum.load())
	fmt.Fprintf(&sb, "%s_count %d\n", h.name, total)
	return sb.String()
}

func formatBound(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// formatLabels renders name{k1="v1",k2="v2"} with keys sorted for a
// stable identity, or just name when there are no labels.
func formatLabels(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, v))
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(key, _ interface{}) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

type counterVec struct {
	baseMetric
	children sync.Map // formatted series name -> *counter
}

// NewCounterVec creates a labelled counter family.
func NewCounterVec(name, help string) CounterVec {
	return &counterVec{baseMetric: baseMetric{name: name, help: help, typ: TypeCounter}}
}

func (v *counterVec) WithLabels(labels map[string]string) Metric {
	return v.With(labels)
}

func (v *counterVec) With(labels map[string]string) Counter {
	key := formatLabels(v.name, labels)
	if child, ok := v.children.Load(key); ok {
		return child.(*counter)
	}
	c := &counter{baseMetric: baseMetric{name: key, help: v.help, typ: TypeCounter}}
	actual, _ := v.children.LoadOrStore(key, c)
	return actual.(*counter)
}

func (v *counterVec) Describe() string {
	var sb strings.Builder
	sb.WriteString(v.header())
	for _, key := range sortedKeys(&v.children) {
		if child, ok := v.children.Load(key); ok {
			fmt.Fprintf(&sb, "%s %.6f\n", key, child.(*counter).Get())
		}
	}
	return sb.String()
}

type histogramVec struct {
	baseMetric
	buckets  []float64
	children sync.Map // formatted series name -> *histogram
}

// NewHistogramVec creates a labelled histogram family sharing one
// bucket layout.
func NewHistogramVec(name, help string, buckets []float64) HistogramVec {
	return &histogramVec{
		baseMetric: baseMetric{name: name, help: help, typ: TypeHistogram},
		buckets:    buckets,
	}
}

func (v *histogramVec) WithLabels(labels map[string]string) Metric {
	return v.With(labels)
}

func (v *histogramVec) With(labels map[string]string) Histogram {
	key := formatLabels(v.name, labels)
	if child, ok := v.children.Load(key); ok {
		return child.(*histogram)
	}
	h := NewHistogram(key, v.help, v.buckets).(*histogram)
	actual, _ := v.children.LoadOrStore(key, h)
	return actual.(*histogram)
}

func (v *histogramVec) Describe() string {
	var sb strings.Builder
	sb.WriteString(v.header())

	for _, key := range sortedKeys(&v.children) {
		child, ok := v.children.Load(key)
		if !ok {
			continue
		}
		h := child.(*histogram)

		// the stored key is name{labels}; pull out the bare label list
		// so le can be merged into each bucket line
		labelList := ""
		if idx := strings.IndexByte(key, '{'); idx != -1 {
			labelList = key[idx+1 : len(key)-1]
		}

		h.mu.RLock()
		for i, upper := range h.buckets {
			fmt.Fprintf(&sb, "%s_bucket{%s} %d\n", v.name, joinLabels(fmt.Sprintf("le=%q", formatBound(upper)), labelList), h.counts[i])
		}
		total := atomic.LoadUint64(&h.count)
		fmt.Fprintf(&sb, "%s_bucket{%s} %d\n", v.name, joinLabels(`le="+Inf"`, labelList), total)

		suffix := ""
		if labelList != "" {
			suffix = "{" + labelList + "}"
		}
		fmt.Fprintf(&sb, "%s_sum%s %.6f\n", v.name, suffix, h.sum.load())
		fmt.Fprintf(&sb, "%s_count%s %d\n", v.name, suffix, total)
		h.mu.RUnlock()
	}
	return sb.String()
}

func joinLabels(le, rest string) string {
	if rest == "" {
		return le
	}
	return le + "," + rest
}
