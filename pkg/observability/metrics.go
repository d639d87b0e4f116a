// Package observability wires Prometheus metrics into a Cascade machine
// through lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cascade/pkg/domain"
)

// Metrics holds the Prometheus collectors for one machine.
type Metrics struct {
	cycleDuration prometheus.Histogram
	transitions   *prometheus.CounterVec
	updatedSlots  prometheus.Counter
	overwrites    *prometheus.CounterVec
}

// New creates the collectors and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer to use the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascade_cycle_duration_seconds",
			Help:    "Duration of full transition cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_transitions_total",
			Help: "Exit and enter notifications dispatched, by state type and phase.",
		}, []string{"state", "phase"}),
		updatedSlots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cascade_updated_slots_total",
			Help: "Slots whose value changed during a cycle.",
		}),
		overwrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_target_overwrites_total",
			Help: "Staged targets replaced before they were consumed, by state type.",
		}, []string{"state"}),
	}

	reg.MustRegister(m.cycleDuration, m.transitions, m.updatedSlots, m.overwrites)
	return m
}

// Transitions exposes the transition counter, e.g. for test assertions.
func (m *Metrics) Transitions() *prometheus.CounterVec { return m.transitions }

// Overwrites exposes the target overwrite counter.
func (m *Metrics) Overwrites() *prometheus.CounterVec { return m.overwrites }

// Hooks returns the lifecycle hooks feeding these collectors. Pass the result
// to cascade.WithLifecycleHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCycleEnd: func(_ context.Context, stats domain.CycleStats) {
			m.cycleDuration.Observe(stats.Duration.Seconds())
			m.updatedSlots.Add(float64(stats.Updated))
		},
		OnStateExit: func(_ context.Context, ev *domain.TransitionEvent) {
			m.transitions.WithLabelValues(ev.State, "exit").Inc()
		},
		OnStateEnter: func(_ context.Context, ev *domain.TransitionEvent) {
			m.transitions.WithLabelValues(ev.State, "enter").Inc()
		},
		OnTargetOverwrite: func(_ context.Context, ev *domain.OverwriteEvent) {
			m.overwrites.WithLabelValues(ev.State).Inc()
		},
	}
}
