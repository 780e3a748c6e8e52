package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/fascia-warehouse/internal/application/scheduler"
)

// WarehouseMetricsCollector exports queue activity. It satisfies
// scheduler.Recorder.
type WarehouseMetricsCollector struct {
	queueDepth         *prometheus.GaugeVec
	requestsCompleted  *prometheus.CounterVec
	replenishmentsSent *prometheus.CounterVec
}

// NewWarehouseMetricsCollector creates the queue metrics
func NewWarehouseMetricsCollector() *WarehouseMetricsCollector {
	return &WarehouseMetricsCollector{
		// Depth of each pipeline queue
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_depth",
				Help:      "Number of work requests or locations waiting per queue",
			},
			[]string{"stage"},
		),

		// Loaded requests
		requestsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_completed_total",
				Help:      "Total number of loaded work requests by load order compliance",
			},
			[]string{"order"},
		),

		// Replenishment requests raised per location
		replenishmentsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replenishments_queued_total",
				Help:      "Total number of replenishment requests by location",
			},
			[]string{"location"},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *WarehouseMetricsCollector) Register() error {
	return register(c.queueDepth, c.requestsCompleted, c.replenishmentsSent)
}

func (c *WarehouseMetricsCollector) RecordQueueDepth(stage scheduler.Stage, depth int) {
	c.queueDepth.WithLabelValues(string(stage)).Set(float64(depth))
}

func (c *WarehouseMetricsCollector) RecordRequestCompleted(requestID int, outOfOrder bool) {
	label := "in_order"
	if outOfOrder {
		label = "out_of_order"
	}
	c.requestsCompleted.WithLabelValues(label).Inc()
}

func (c *WarehouseMetricsCollector) RecordReplenishmentQueued(slot string) {
	c.replenishmentsSent.WithLabelValues(slot).Inc()
}
