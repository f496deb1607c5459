package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Auth("login", nil)
	m.Auth("login", errors.New("nope"))
	m.Auth("login", errors.New("nope"))
	m.Reaped("expired", 3)
	m.Reaped("expired", 2)
	m.SweepFailed("stale_inactive")

	if got := testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("login", "ok")); got != 1 {
		t.Errorf("login ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("login", "error")); got != 2 {
		t.Errorf("login error = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TokensReaped.WithLabelValues("expired")); got != 5 {
		t.Errorf("reaped expired = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.SweepErrors.WithLabelValues("stale_inactive")); got != 1 {
		t.Errorf("sweep errors = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Auth("login", nil)
	m.Reaped("expired", 1)
	m.SweepFailed("expired")
}
