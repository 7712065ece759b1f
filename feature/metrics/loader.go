package metrics

import (
	"context"

	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feature implements loader.Feature, loader.PublicRoutes and loader.RunHook.
type Feature struct {
	cfg       Config
	collector *Collector
}

// NewFeature creates the metrics feature.
func NewFeature(cfg Config) *Feature {
	return &Feature{cfg: cfg, collector: NewCollector(cfg.Namespace)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "metrics"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled
}

// Load registers nothing behind the API key.
func (f *Feature) Load(app fiber.Router) error {
	return nil
}

// LoadPublic registers GET /metrics.
func (f *Feature) LoadPublic(app fiber.Router) error {
	handler := promhttp.HandlerFor(f.collector.Registry(), promhttp.HandlerOpts{})
	app.Get("/metrics", adaptor.HTTPHandler(handler))
	return nil
}

// Collector returns the underlying collector.
func (f *Feature) Collector() *Collector {
	return f.collector
}

// BeforeRun forwards to the collector.
func (f *Feature) BeforeRun(ctx context.Context, runID string) {
	f.collector.BeforeRun(ctx, runID)
}

// AfterRun forwards to the collector.
func (f *Feature) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	f.collector.AfterRun(ctx, report, err)
}
