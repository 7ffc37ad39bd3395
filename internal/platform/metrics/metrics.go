package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for backend calls made through the gateway.
type Metrics struct {
	GatewayRequests      *prometheus.CounterVec
	GatewayDuration      *prometheus.HistogramVec
	SessionInvalidations prometheus.Counter
	GuardRedirects       *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GatewayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodreel_gateway_requests_total",
			Help: "Total number of backend calls by method and outcome",
		}, []string{"method", "outcome"}),
		GatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodreel_gateway_request_duration_seconds",
			Help:    "Latency of backend calls in seconds",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"outcome"}),
		SessionInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "foodreel_session_invalidations_total",
			Help: "Total number of sessions invalidated after a 401 from the backend",
		}),
		GuardRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodreel_guard_redirects_total",
			Help: "Total number of protected views redirected to an entry point",
		}, []string{"target"}),
	}
}

// ObserveGatewayCall records one classified backend call.
func (m *Metrics) ObserveGatewayCall(method, outcome string, elapsed time.Duration) {
	m.GatewayRequests.WithLabelValues(method, outcome).Inc()
	m.GatewayDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// IncSessionInvalidations increments the invalidation counter by 1.
func (m *Metrics) IncSessionInvalidations() {
	m.SessionInvalidations.Inc()
}

// IncGuardRedirect counts a guard redirect to target.
func (m *Metrics) IncGuardRedirect(target string) {
	m.GuardRedirects.WithLabelValues(target).Inc()
}
