package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the auth collectors. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	authOutcomes *prometheus.CounterVec
	decisions    *prometheus.CounterVec
	sweeps       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_credential_checks_total",
			Help: "credential checks by operation and outcome",
		}, []string{"operation", "outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_authorization_decisions_total",
			Help: "authorization decisions by outcome",
		}, []string{"outcome"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_revocation_swept_total",
			Help: "revoked credentials evicted after natural expiry",
		}, []string{"trigger"}),
	}
	reg.MustRegister(m.authOutcomes, m.decisions, m.sweeps)
	return m
}

// ObserveCredential counts one authenticate/refresh outcome.
func (m *Metrics) ObserveCredential(operation, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveDecision(outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSweep(trigger string, removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.sweeps.WithLabelValues(trigger).Add(float64(removed))
}

// TrackRegistrySize exports the revocation registry size, read on scrape.
func (m *Metrics) TrackRegistrySize(size func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auth_revoked_credentials",
		Help: "credentials currently held by the revocation registry",
	}, size))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
