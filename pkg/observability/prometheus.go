package observability

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics exports Metrics through a Prometheus registry.
// Vectors are registered on first use; the label names of a metric are
// fixed by the tags of that first call and later calls with a different
// tag set are dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	factory  promauto.Factory

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewPrometheusMetrics creates metrics on a dedicated registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	return &PrometheusMetrics{
		registry:   registry,
		factory:    promauto.With(registry),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labels:     make(map[string][]string),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names, values := splitTags(tags)
	vec, ok := m.counters[name]
	if !ok {
		vec = m.factory.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, names)
		m.counters[name] = vec
		m.labels[name] = names
	}
	if !m.sameLabels(name, names) {
		return
	}
	vec.WithLabelValues(values...).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names, values := splitTags(tags)
	vec, ok := m.gauges[name]
	if !ok {
		vec = m.factory.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: name}, names)
		m.gauges[name] = vec
		m.labels[name] = names
	}
	if !m.sameLabels(name, names) {
		return
	}
	vec.WithLabelValues(values...).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names, values := splitTags(tags)
	vec, ok := m.histograms[name]
	if !ok {
		vec = m.factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    name,
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}, names)
		m.histograms[name] = vec
		m.labels[name] = names
	}
	if !m.sameLabels(name, names) {
		return
	}
	vec.WithLabelValues(values...).Observe(value)
}

// Timing records the duration in milliseconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.Histogram(name, float64(duration.Milliseconds()), tags...)
}

func (m *PrometheusMetrics) sameLabels(name string, names []string) bool {
	registered := m.labels[name]
	if len(registered) != len(names) {
		return false
	}
	for i := range names {
		if registered[i] != names[i] {
			return false
		}
	}
	return true
}

func splitTags(tags []Tag) ([]string, []string) {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	names := make([]string, len(sorted))
	values := make([]string, len(sorted))
	for i, t := range sorted {
		names[i] = t.Key
		values[i] = t.Value
	}
	return names, values
}
