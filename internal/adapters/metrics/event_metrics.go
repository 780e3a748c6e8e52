package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
)

// EventMetricsCollector counts applied events and how long they take
type EventMetricsCollector struct {
	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
}

// NewEventMetricsCollector creates the event metrics
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Total number of floor events by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_duration_seconds",
				Help:      "Time to apply an event including every cascading hand-off",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"kind"},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *EventMetricsCollector) Register() error {
	return register(c.eventsTotal, c.eventDuration)
}

// RecordEvent records one applied or rejected event
func (c *EventMetricsCollector) RecordEvent(kind string, duration float64, accepted bool) {
	outcome := "applied"
	if !accepted {
		outcome = "rejected"
	}
	c.eventsTotal.WithLabelValues(kind, outcome).Inc()
	c.eventDuration.WithLabelValues(kind).Observe(duration)
}

// PrometheusMiddleware records every event passing through the simulation
func PrometheusMiddleware(collector *EventMetricsCollector) simulation.Middleware {
	return func(ctx context.Context, ev simulation.Event, next simulation.HandlerFunc) error {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, ev)
		}

		start := time.Now()
		err := next(ctx, ev)
		collector.RecordEvent(ev.Kind(), time.Since(start).Seconds(), err == nil)
		return err
	}
}
