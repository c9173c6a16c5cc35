// Package metrics exposes Prometheus collectors for the call monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics carries the monitor's collectors. A single instance is created in
// main and handed to collaborators; no package-level registry.
type Metrics struct {
	SweepsTotal     prometheus.Counter
	SweepsSkipped   prometheus.Counter
	FetchFailures   prometheus.Counter
	EventsProcessed *prometheus.CounterVec
	ActiveCalls     prometheus.Gauge
	Notifications   *prometheus.CounterVec
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicewatch_sweeps_total",
			Help: "Poll sweeps executed.",
		}),
		SweepsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicewatch_sweeps_skipped_total",
			Help: "Ticks skipped because the previous sweep was still running.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicewatch_fetch_failures_total",
			Help: "Call snapshot fetches that failed after retries.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicewatch_events_processed_total",
			Help: "Call events applied by the transition engine.",
		}, []string{"type"}),
		ActiveCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voicewatch_active_calls",
			Help: "Calls currently tracked by the registry.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicewatch_notifications_total",
			Help: "Notifications emitted, by topic.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.SweepsTotal,
		m.SweepsSkipped,
		m.FetchFailures,
		m.EventsProcessed,
		m.ActiveCalls,
		m.Notifications,
	)
	return m
}

// NewRegistry returns a registry pre-loaded with process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
