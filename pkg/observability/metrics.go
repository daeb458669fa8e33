// Package observability provides metrics and tracing for the vidscribe CLI.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the client session.
type Metrics struct {
	// API call metrics
	APIRequestsTotal  *prometheus.CounterVec
	APILatencySeconds *prometheus.HistogramVec

	// Intent routing metrics
	IntentDispatchTotal *prometheus.CounterVec

	// Playback metrics
	SeeksTotal *prometheus.CounterVec
}

// DefaultMetrics creates metrics registered on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new metric set registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidscribe_api_requests_total",
				Help: "Total requests to the analysis service by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),
		APILatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidscribe_api_latency_seconds",
				Help:    "Latency of analysis service calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint"},
		),
		IntentDispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidscribe_intent_dispatch_total",
				Help: "Classified utterances dispatched by intent",
			},
			[]string{"intent"},
		),
		SeeksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidscribe_seeks_total",
				Help: "Seek operations by playback backend and outcome",
			},
			[]string{"backend", "status"},
		),
	}
}

// ObserveAPICall records one call to the analysis service.
// Safe to call on a nil receiver so components can run without metrics.
func (m *Metrics) ObserveAPICall(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.APILatencySeconds.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveIntent records one dispatched intent.
func (m *Metrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.IntentDispatchTotal.WithLabelValues(intent).Inc()
}

// ObserveSeek records one seek attempt.
func (m *Metrics) ObserveSeek(backend, status string) {
	if m == nil {
		return
	}
	m.SeeksTotal.WithLabelValues(backend, status).Inc()
}
