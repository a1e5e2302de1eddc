// Package metrics exposes Prometheus collectors for the conversation engine.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "concierge"

type Metrics struct {
	resolutions       *prometheus.CounterVec
	turns             *prometheus.CounterVec
	resets            *prometheus.CounterVec
	capabilityLatency *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNewMetrics registers the collectors with reg, reusing collectors that
// are already registered under the same name. Other registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "References resolved to an entity, by domain and rule.",
		}, []string{"domain", "rule"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "turns_total",
			Help:      "Agent turns handled, by agent and outcome.",
		}, []string{"agent", "outcome"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resets_total",
			Help:      "Session memory resets, by source.",
		}, []string{"source"}),
		capabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "capability",
			Name:      "generate_duration_seconds",
			Help:      "Time spent in one capability call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent", "status"}),
	}

	m.resolutions = register(reg, m.resolutions)
	m.turns = register(reg, m.turns)
	m.resets = register(reg, m.resets)
	m.capabilityLatency = register(reg, m.capabilityLatency)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) ObserveResolution(domain, rule string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(domain, rule).Inc()
}

// ObserveTurn counts one agent turn; outcome is "ok" or "error".
func (m *Metrics) ObserveTurn(agent, outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(agent, outcome).Inc()
}

func (m *Metrics) ObserveReset(source string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveCapability(agent string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.capabilityLatency.WithLabelValues(agent, status).Observe(d.Seconds())
}
