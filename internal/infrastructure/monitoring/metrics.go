package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the token lifecycle.
// All Record methods tolerate a nil receiver so callers need no guards when
// metrics are disabled.
type Metrics struct {
	registry *prometheus.Registry

	TokenIssued        *prometheus.CounterVec
	TokenValidated     *prometheus.CounterVec
	TokenRotated       *prometheus.CounterVec
	TokenRevoked       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// NewMetrics registers the instruments on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		TokenIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokengate_tokens_issued_total",
				Help: "Total tokens issued, by tenant and kind.",
			},
			[]string{"tenant_id", "kind"},
		),
		TokenValidated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokengate_token_validations_total",
				Help: "Total token validations, by result.",
			},
			[]string{"result"},
		),
		TokenRotated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokengate_tokens_rotated_total",
				Help: "Total refresh rotations, by tenant and result.",
			},
			[]string{"tenant_id", "result"},
		),
		TokenRevoked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokengate_tokens_revoked_total",
				Help: "Total revocations, by tenant.",
			},
			[]string{"tenant_id"},
		),
		HTTPRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokengate_http_request_duration_seconds",
				Help:    "HTTP request latency, by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) RecordTokenIssued(tenantID, kind string) {
	if m == nil {
		return
	}
	m.TokenIssued.WithLabelValues(tenantID, kind).Inc()
}

func (m *Metrics) RecordTokenValidated(result string) {
	if m == nil {
		return
	}
	m.TokenValidated.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordTokenRotated(tenantID, result string) {
	if m == nil {
		return
	}
	m.TokenRotated.WithLabelValues(tenantID, result).Inc()
}

func (m *Metrics) RecordTokenRevoked(tenantID string) {
	if m == nil {
		return
	}
	m.TokenRevoked.WithLabelValues(tenantID).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestLatency.WithLabelValues(method, route, statusLabel(status)).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
