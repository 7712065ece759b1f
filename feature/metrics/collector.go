package metrics

import (
	"context"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records pass outcomes as prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	actions       *prometheus.CounterVec
	running       prometheus.Gauge
	lastRun       prometheus.Gauge
	lastSuccess   prometheus.Gauge
	duration      prometheus.Histogram
	sourceEvents  prometheus.Gauge
	mirrorEvents  prometheus.Gauge
	protectedPast prometheus.Gauge
}

// NewCollector creates the metrics and registers them on a dedicated registry.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of reconciliation passes.",
		}, []string{"status", "phase"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of mirror mutations applied or simulated.",
		}, []string{"action", "dry_run"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while a pass is in progress.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last pass finished.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful pass finished.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		sourceEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_events",
			Help:      "Source events fetched by the last planned pass.",
		}),
		mirrorEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirror_events",
			Help:      "Mirror events fetched by the last planned pass.",
		}),
		protectedPast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "protected_past_orphans",
			Help:      "Orphans left in place by the last planned pass because they already started.",
		}),
	}

	c.registry.MustRegister(
		c.runs, c.actions, c.running, c.lastRun, c.lastSuccess,
		c.duration, c.sourceEvents, c.mirrorEvents, c.protectedPast,
	)
	return c
}

// Registry returns the registry holding the metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// BeforeRun marks a pass as running.
func (c *Collector) BeforeRun(ctx context.Context, runID string) {
	c.running.Set(1)
}

// AfterRun records the outcome of a pass.
func (c *Collector) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	c.running.Set(0)

	finished := report.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	c.lastRun.Set(float64(finished.Unix()))
	if !report.StartedAt.IsZero() {
		c.duration.Observe(finished.Sub(report.StartedAt).Seconds())
	}

	if err != nil || report.Error != "" {
		c.runs.WithLabelValues("failed", string(report.Phase)).Inc()
	} else {
		c.runs.WithLabelValues("success", "").Inc()
		c.lastSuccess.Set(float64(finished.Unix()))
	}

	if report.Plan != nil {
		c.sourceEvents.Set(float64(report.Plan.Summary.SourceEvents))
		c.mirrorEvents.Set(float64(report.Plan.Summary.MirrorEvents))
		c.protectedPast.Set(float64(report.Plan.Summary.ProtectedPast))
	}

	if r := report.Result; r != nil {
		dry := "false"
		if r.DryRun {
			dry = "true"
		}
		created, updated, deleted := r.Counts()
		c.actions.WithLabelValues("create", dry).Add(float64(created))
		c.actions.WithLabelValues("update", dry).Add(float64(updated))
		c.actions.WithLabelValues("delete", dry).Add(float64(deleted))
		c.actions.WithLabelValues("delete_failed", dry).Add(float64(r.DeleteFailed))
	}
}
