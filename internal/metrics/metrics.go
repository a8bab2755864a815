// Package metrics exposes Prometheus counters for the workflow core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests never trip duplicate
// registration panics. All methods are safe on a nil receiver.
type Collector struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	conflicts     prometheus.Counter
	notifications *prometheus.CounterVec
}

// New builds a collector with the workflow counter set registered.
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_transitions_total",
			Help: "Stage transition attempts grouped by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hireline_transition_conflicts_total",
			Help: "Stage transitions that observed a concurrent writer.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_notifications_total",
			Help: "Notification intents grouped by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	registry.MustRegister(
		c.transitions,
		c.conflicts,
		c.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// TransitionApplied records a committed stage transition.
func (c *Collector) TransitionApplied() {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues("applied").Inc()
}

// TransitionRejected records a transition refused by policy or the stage graph.
func (c *Collector) TransitionRejected() {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues("rejected").Inc()
}

// TransitionConflict records a lost optimistic concurrency race.
func (c *Collector) TransitionConflict() {
	if c == nil {
		return
	}
	c.conflicts.Inc()
}

// NotificationPublished records a delivered notification intent.
func (c *Collector) NotificationPublished(kind string) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(kind, "published").Inc()
}

// NotificationSuppressed records an intent dropped because its kind is
// disabled by configuration.
func (c *Collector) NotificationSuppressed(kind string) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(kind, "suppressed").Inc()
}

// NotificationFailed records a notification intent that could not be delivered.
func (c *Collector) NotificationFailed(kind string) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(kind, "failed").Inc()
}

// Handler serves the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
