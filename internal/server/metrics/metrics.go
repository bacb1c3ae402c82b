// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	authAttempts  *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
	sweptSessions prometheus.Counter
	sweptVerifs   prometheus.Counter
}

// New registers the collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_auth_attempts_total",
				Help: "Sign-up and sign-in attempts by method, provider and outcome",
			},
			[]string{"method", "provider", "outcome"},
		),
		rpcDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_rpc_duration_seconds",
				Help:    "gRPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
		sweptSessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_swept_sessions_total",
			Help: "Expired sessions removed by the sweeper",
		}),
		sweptVerifs: factory.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_swept_verifications_total",
			Help: "Expired verifications removed by the sweeper",
		}),
	}
}

func (m *Metrics) AuthAttempt(method, provider string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.authAttempts.WithLabelValues(method, provider, outcome).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}

func (m *Metrics) Swept(sessions, verifications int64) {
	m.sweptSessions.Add(float64(sessions))
	m.sweptVerifs.Add(float64(verifications))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
