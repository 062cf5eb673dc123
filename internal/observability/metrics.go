package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sign-in and sign-up outcome labels
const (
	OutcomeSuccess       = "success"
	OutcomeUnknownUser   = "unknown_user"
	OutcomeWrongPassword = "wrong_password"
	OutcomeDuplicate     = "duplicate"
	OutcomeInvalid       = "invalid"
	OutcomeStoreError    = "store_error"
)

// Token rejection reasons
const (
	ReasonMissing          = "missing"
	ReasonInvalidSignature = "invalid_signature"
	ReasonExpired          = "expired"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SignInTotal          *prometheus.CounterVec
	SignUpTotal          *prometheus.CounterVec
	TokenRejectionsTotal *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		SignInTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_signin_total",
				Help: "Total number of sign-in attempts by outcome",
			},
			[]string{"outcome"},
		),
		SignUpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_signup_total",
				Help: "Total number of sign-up attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_token_rejections_total",
				Help: "Total number of requests rejected by the authentication filter",
			},
			[]string{"reason"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	registry.MustRegister(
		m.SignInTotal,
		m.SignUpTotal,
		m.TokenRejectionsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// RecordSignIn counts a sign-in attempt
func (m *Metrics) RecordSignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignInTotal.WithLabelValues(outcome).Inc()
}

// RecordSignUp counts a sign-up attempt
func (m *Metrics) RecordSignUp(outcome string) {
	if m == nil {
		return
	}
	m.SignUpTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenRejection counts a request rejected by the authentication filter
func (m *Metrics) RecordTokenRejection(reason string) {
	if m == nil {
		return
	}
	m.TokenRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records a completed request
func (m *Metrics) RecordHTTPRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
