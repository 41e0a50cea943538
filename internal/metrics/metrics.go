// Package metrics exposes Prometheus counters for configuration checks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nauticalab/propbind/pkg/problems"
)

// Metrics holds the collectors of one server. A nil *Metrics or one created
// disabled records nothing.
type Metrics struct {
	validations *prometheus.CounterVec
	messages    *prometheus.CounterVec
	registry    *prometheus.Registry
}

// New creates the collectors in their own registry under namespace.
func New(enabled bool, namespace string) *Metrics {
	if !enabled {
		return &Metrics{}
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of property bags validated",
			},
			[]string{"module", "result"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "problems_total",
				Help:      "Total number of configuration errors and warnings reported",
			},
			[]string{"kind", "severity"},
		),
	}
	registry.MustRegister(m.validations, m.messages)
	return m
}

// RecordValidation counts one validation of module and every message it produced.
func (m *Metrics) RecordValidation(module string, result *problems.Problems) {
	if m == nil || m.validations == nil {
		return
	}

	outcome := "valid"
	if result.HasErrors() {
		outcome = "invalid"
	}
	m.validations.WithLabelValues(module, outcome).Inc()

	for _, msg := range result.All() {
		m.messages.WithLabelValues(string(msg.Kind), msg.Severity.String()).Inc()
	}
}

// Handler serves the registry, or 404 when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
