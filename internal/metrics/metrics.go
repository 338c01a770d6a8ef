// Package metrics exposes Prometheus instrumentation for the service.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "najdeno"

// Metrics holds the collectors registered for one service instance.
type Metrics struct {
	gatherer prometheus.Gatherer

	adjudications  *prometheus.CounterVec
	scorerFailures prometheus.Counter
	scorerDuration prometheus.Histogram
	candidates     *prometheus.HistogramVec
	auditEntries   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg. Passing a fresh prometheus.Registry
// keeps tests isolated from the global registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		adjudications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adjudications_total",
			Help:      "Claim adjudications by decision and outcome.",
		}, []string{"decision", "outcome"}),
		scorerFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scorer_failures_total",
			Help:      "Match scorer calls that failed or timed out.",
		}),
		scorerDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scorer_duration_seconds",
			Help:      "Latency of match scorer calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		candidates: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_candidates",
			Help:      "Number of candidates returned per match lookup.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20},
		}, []string{"list"}),
		auditEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Audit log entries appended by action.",
		}, []string{"action"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler serves the registered collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Adjudication(decision string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.adjudications.WithLabelValues(decision, outcome).Inc()
}

func (m *Metrics) ScorerCall(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.scorerDuration.Observe(d.Seconds())
	if err != nil {
		m.scorerFailures.Inc()
	}
}

func (m *Metrics) Candidates(ranked, fallback int) {
	if m == nil {
		return
	}
	m.candidates.WithLabelValues("ranked").Observe(float64(ranked))
	m.candidates.WithLabelValues("fallback").Observe(float64(fallback))
}

func (m *Metrics) AuditEntry(action string) {
	if m == nil {
		return
	}
	m.auditEntries.WithLabelValues(action).Inc()
}

func (m *Metrics) HTTPRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}
