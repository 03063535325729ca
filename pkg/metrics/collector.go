package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
)

// StatsSource provides the processing snapshot polled into gauges. The
// dispatch processor implements it.
type StatsSource interface {
	Stats() dispatch.Stats
}

// Collector turns dispatch signals and processor stats into Prometheus
// metrics. It owns its registry so tests never collide on the default one.
type Collector struct {
	registry *prometheus.Registry

	queued       *prometheus.CounterVec
	processed    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	deadLettered *prometheus.CounterVec

	queueDepth  *prometheus.GaugeVec
	activeConns prometheus.Gauge
	processing  prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		queued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_queued_total",
			Help: "Events admitted to the priority queues.",
		}, []string{"priority"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_processed_total",
			Help: "Events handled successfully.",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_failed_total",
			Help: "Handler failures that were requeued for retry.",
		}, []string{"kind"}),
		deadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_dead_lettered_total",
			Help: "Events that exhausted their retry budget.",
		}, []string{"kind"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "realtime_queue_depth",
			Help: "Current depth of each priority class queue.",
		}, []string{"priority"}),
		activeConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_active_connections",
			Help: "Open websocket connections.",
		}),
		processing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_pass_running",
			Help: "Whether a processing pass is currently running.",
		}),
	}

	c.registry.MustRegister(
		c.queued, c.processed, c.failed, c.deadLettered,
		c.queueDepth, c.activeConns, c.processing,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Observe records one dispatch signal.
func (c *Collector) Observe(s dispatch.Signal) {
	switch s.Kind {
	case dispatch.SignalQueued:
		c.queued.WithLabelValues(string(s.Priority)).Inc()
	case dispatch.SignalProcessed:
		c.processed.WithLabelValues(string(s.Event)).Inc()
	case dispatch.SignalFailed:
		c.failed.WithLabelValues(string(s.Event)).Inc()
	case dispatch.SignalDeadLettered:
		c.deadLettered.WithLabelValues(string(s.Event)).Inc()
	}
}

// Consume drains the monitor until the context is cancelled. Run it in its
// own goroutine; the monitor's emit side never blocks on this consumer.
func (c *Collector) Consume(ctx context.Context, m *dispatch.Monitor) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-m.C():
			c.Observe(s)
		}
	}
}

// Snapshot copies one stats reading into the gauges.
func (c *Collector) Snapshot(s dispatch.Stats) {
	for _, p := range event.Priorities() {
		c.queueDepth.WithLabelValues(string(p)).Set(float64(s.QueueSizes[p]))
	}
	c.activeConns.Set(float64(s.ActiveConnections))
	if s.IsProcessing {
		c.processing.Set(1)
	} else {
		c.processing.Set(0)
	}
}

// Poll snapshots the stats source on an interval until the context is
// cancelled.
func (c *Collector) Poll(ctx context.Context, src StatsSource, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Snapshot(src.Stats())
		}
	}
}
