package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's collectors. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
	HTTPErrors   *prometheus.CounterVec
	AuthOutcomes *prometheus.CounterVec
	TokensReaped *prometheus.CounterVec
	SweepErrors  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
		HTTPErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_errors_total", Help: "Count of HTTP responses with status >= 500"},
			[]string{"path", "method"},
		),
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "auth_operations_total", Help: "Auth operations by outcome"},
			[]string{"op", "outcome"},
		),
		TokensReaped: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "auth_tokens_reaped_total", Help: "Token records deleted by the reaper"},
			[]string{"sweep"},
		),
		SweepErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "auth_token_sweep_errors_total", Help: "Failed reaper sweeps"},
			[]string{"sweep"},
		),
	}
	reg.MustRegister(m.HTTPRequests, m.HTTPLatency, m.HTTPErrors, m.AuthOutcomes, m.TokensReaped, m.SweepErrors)
	return m
}

func (m *Metrics) Auth(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AuthOutcomes.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Reaped(sweep string, n int64) {
	if m == nil {
		return
	}
	m.TokensReaped.WithLabelValues(sweep).Add(float64(n))
}

func (m *Metrics) SweepFailed(sweep string) {
	if m == nil {
		return
	}
	m.SweepErrors.WithLabelValues(sweep).Inc()
}
