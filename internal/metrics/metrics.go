package metrics

import (
	"net/http"

	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hcms"

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	resets    *prometheus.CounterVec
	backend   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_decisions_total",
			Help:      "Navigation decisions by destination.",
		}, []string{"destination"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resets_total",
			Help:      "Session resets by reason.",
		}, []string{"reason"}),
		backend: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}

	m.registry.MustRegister(
		m.decisions,
		m.resets,
		m.backend,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Decision(d router.Decision) {
	m.decisions.WithLabelValues(string(d.Destination)).Inc()
	if d.Reset != router.ResetNone {
		m.resets.WithLabelValues(string(d.Reset)).Inc()
	}
}

func (m *Metrics) BackendRequest(endpoint, outcome string) {
	m.backend.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
