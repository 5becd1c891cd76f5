package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "befriend"

// Discover outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeCacheHit     = "cache_hit"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeNotOnboarded = "not_onboarded"
	OutcomeError        = "error"
)

// Metrics owns a private registry so tests and multiple servers never collide
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	discoverRequests *prometheus.CounterVec
	recommenderUsed  *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		discoverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discover_requests_total",
			Help:      "Discover calls by outcome.",
		}, []string{"outcome"}),
		recommenderUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommender_source_total",
			Help:      "Discover results by the recommender that produced them.",
		}, []string{"source"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.discoverRequests,
		m.recommenderUsed,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) DiscoverRequest(outcome string) {
	if m == nil {
		return
	}
	m.discoverRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecommenderSource(source string) {
	if m == nil {
		return
	}
	m.recommenderUsed.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
