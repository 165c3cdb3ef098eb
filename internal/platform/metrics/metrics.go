package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// Methods are nil-safe so flows can run without a registry in tests.
type Metrics struct {
	RemoteCallDuration *prometheus.HistogramVec
	EndpointLatency    *prometheus.HistogramVec
	SessionsCreated    prometheus.Counter

	// Workflow metrics
	Verifications    *prometheus.CounterVec
	TicketsIssued    *prometheus.CounterVec
	Payments         *prometheus.CounterVec
	InFlightRefusals *prometheus.CounterVec
	RateLimited      prometheus.Counter

	// Catalog metrics
	CatalogFallbacks prometheus.Counter
	CatalogBreaker   prometheus.Gauge
}

// New creates and registers all Prometheus metrics on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RemoteCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickethub_remote_call_duration_seconds",
			Help:    "Latency of calls to the ticket service, labeled by operation and outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickethub_endpoint_latency_seconds",
			Help:    "Latency of served routes in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tickethub_sessions_created_total",
			Help: "Total number of browser sessions created",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tickethub_verifications_total",
			Help: "Identity card verifications, labeled by role and outcome",
		}, []string{"role", "outcome"}),
		TicketsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tickethub_ticket_issuance_total",
			Help: "Ticket issuance attempts, labeled by outcome",
		}, []string{"outcome"}),
		Payments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tickethub_payments_total",
			Help: "Ticket payments, labeled by method and outcome",
		}, []string{"method", "outcome"}),
		InFlightRefusals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tickethub_inflight_refusals_total",
			Help: "Submissions refused because the same action was already running",
		}, []string{"action"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "tickethub_rate_limited_total",
			Help: "Verification submissions refused by the per-client rate limit",
		}),
		CatalogFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "tickethub_catalog_fallbacks_total",
			Help: "Times the built-in ticket catalog was served instead of the remote one",
		}),
		CatalogBreaker: f.NewGauge(prometheus.GaugeOpts{
			Name: "tickethub_catalog_breaker_open",
			Help: "1 while the catalog circuit breaker is open",
		}),
	}
}

// ObserveRemoteCall records the latency of one remote call.
func (m *Metrics) ObserveRemoteCall(operation, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RemoteCallDuration.WithLabelValues(operation, outcome).Observe(durationSeconds)
}

// ObserveEndpointLatency records the latency for a given route pattern.
func (m *Metrics) ObserveEndpointLatency(route string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(route).Observe(durationSeconds)
}

func (m *Metrics) IncrementSessionsCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

func (m *Metrics) IncrementVerifications(role, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) IncrementTicketsIssued(outcome string) {
	if m == nil {
		return
	}
	m.TicketsIssued.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementPayments(method, outcome string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) IncrementInFlightRefusals(action string) {
	if m == nil {
		return
	}
	m.InFlightRefusals.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) IncrementCatalogFallbacks() {
	if m == nil {
		return
	}
	m.CatalogFallbacks.Inc()
}

// SetCatalogBreakerOpen mirrors the catalog breaker state.
func (m *Metrics) SetCatalogBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CatalogBreaker.Set(1)
		return
	}
	m.CatalogBreaker.Set(0)
}
