package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.DiscoverRequest(OutcomeOK)
	m.DiscoverRequest(OutcomeOK)
	m.DiscoverRequest(OutcomeInvalid)
	m.RecommenderSource("heuristic")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.discoverRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.discoverRequests.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommenderUsed.WithLabelValues("heuristic")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DiscoverRequest(OutcomeOK)
		m.RecommenderSource("gemini")
		m.ObserveHTTP("GET", "/health", "200", time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/discover", "200", 120*time.Millisecond)
	m.DiscoverRequest(OutcomeCacheHit)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `befriend_discover_requests_total{outcome="cache_hit"} 1`)
	assert.Contains(t, string(body), `befriend_http_request_duration_seconds_count{method="POST",route="/discover",status="200"} 1`)
}
