package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	m := New()

	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", errors.New("bad password"))
	m.ObserveAuth("login", errors.New("bad password"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.authOperations.WithLabelValues("login", OutcomeSuccess)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.authOperations.WithLabelValues("login", OutcomeFailure)), 0)
}

func TestCounters(t *testing.T) {
	m := New()

	m.PublishFailed("user.logged_in")
	m.SessionsCleaned(3)
	m.SessionsCleaned(2)
	m.AuditEvent(OutcomeSuccess)

	assert.InDelta(t, 1, testutil.ToFloat64(m.publishFailures.WithLabelValues("user.logged_in")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.sessionsCleaned), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.auditEventsSaved.WithLabelValues(OutcomeSuccess)), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/health", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskboard_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
