package resource

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts which tier served each resource. A run is a single process,
// so the registry is written to a node-exporter textfile rather than scraped.
type Metrics struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	missing  *prometheus.CounterVec
}

// NewMetrics creates counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultantpdf_resource_fetch_total",
			Help: "Resources served, by resource and serving tier.",
		}, []string{"resource", "source"}),
		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultantpdf_resource_unavailable_total",
			Help: "Resources that no tier could serve.",
		}, []string{"resource"}),
	}
	m.registry.MustRegister(m.fetches, m.missing)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) served(resource string, source Source) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(resource, string(source)).Inc()
}

func (m *Metrics) unavailable(resource string) {
	if m == nil {
		return
	}
	m.missing.WithLabelValues(resource).Inc()
}
