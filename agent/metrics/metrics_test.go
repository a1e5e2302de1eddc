package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.ObserveResolution("lodging", "deictic")
	m.ObserveResolution("lodging", "deictic")
	m.ObserveTurn("deals", "error")
	m.ObserveReset("keyword")

	if got := testutil.ToFloat64(m.resolutions.WithLabelValues("lodging", "deictic")); got != 2 {
		t.Fatalf("resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.turns.WithLabelValues("deals", "error")); got != 1 {
		t.Fatalf("turns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.resets.WithLabelValues("keyword")); got != 1 {
		t.Fatalf("resets = %v, want 1", got)
	}
}

func TestMetricsCapabilityHistogram(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.ObserveCapability("supervisor", nil, 20*time.Millisecond)
	m.ObserveCapability("supervisor", errors.New("boom"), time.Second)

	if got := testutil.CollectAndCount(m.capabilityLatency); got != 2 {
		t.Fatalf("histogram series = %d, want 2", got)
	}
}

func TestMustNewMetricsReusesRegisteredCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	second := MustNewMetrics(reg)

	second.ObserveReset("http")
	if got := testutil.ToFloat64(first.resets.WithLabelValues("http")); got != 1 {
		t.Fatalf("shared resets = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveResolution("deals", "alias")
	m.ObserveTurn("deals", "ok")
	m.ObserveReset("keyword")
	m.ObserveCapability("deals", nil, time.Millisecond)
}
