package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Logins.WithLabelValues("success").Inc()
	m.Logins.WithLabelValues("success").Inc()
	m.SignedURLs.WithLabelValues("cache").Inc()

	if got := testutil.ToFloat64(m.Logins.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 logins, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"seeran_logins_total", "seeran_signed_urls_total"} {
		if !names[want] {
			t.Fatalf("expected %s to be registered, got %v", want, names)
		}
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	m := NewNop()
	m.TokensRevoked.Inc()
	if testutil.ToFloat64(m.TokensRevoked) != 1 {
		t.Fatalf("expected counter to work unregistered")
	}
}
