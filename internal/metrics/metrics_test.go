package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Adjudication("approve", nil)
		m.ScorerCall(time.Second, errors.New("down"))
		m.Candidates(1, 2)
		m.AuditEntry("CREATED_ITEM")
		m.HTTPRequest(http.MethodGet, 200, time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Adjudication("approve", nil)
	m.Adjudication("approve", nil)
	m.Adjudication("reject", errors.New("boom"))
	m.ScorerCall(10*time.Millisecond, nil)
	m.ScorerCall(10*time.Millisecond, errors.New("timeout"))
	m.AuditEntry("UPDATED_ITEM")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.adjudications.WithLabelValues("approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adjudications.WithLabelValues("reject", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scorerFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditEntries.WithLabelValues("UPDATED_ITEM")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.HTTPRequest(http.MethodPost, 201, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `najdeno_http_requests_total{code="201",method="POST"} 1`), body)
}
