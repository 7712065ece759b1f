package archive

import (
	"context"

	"calendar-mirror/core/reconcile"
	"calendar-mirror/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature and loader.RunHook.
type Feature struct {
	archiver *Archiver
	enabled  bool
	logger   *zap.Logger
}

// NewFeature creates the archive feature. A nil client disables it.
func NewFeature(client storage.Client, cfg storage.Config, logger *zap.Logger) *Feature {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feature{
		archiver: NewArchiver(client, cfg, logger),
		enabled:  cfg.Enabled && client != nil,
		logger:   logger,
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "archive"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers nothing; the archive has no routes.
func (f *Feature) Load(app fiber.Router) error {
	return nil
}

// BeforeRun does nothing.
func (f *Feature) BeforeRun(ctx context.Context, runID string) {}

// AfterRun uploads the report and prunes expired ones.
func (f *Feature) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	ctx = context.WithoutCancel(ctx)
	l := f.logger.With(zap.String("run_id", report.RunID))

	key, upErr := f.archiver.Upload(ctx, report)
	if upErr != nil {
		l.Warn("Failed to archive report", zap.Error(upErr))
		return
	}
	l.Debug("Archived report", zap.String("key", key))

	removed, pruneErr := f.archiver.Prune(ctx)
	if pruneErr != nil {
		l.Warn("Failed to prune archived reports", zap.Error(pruneErr))
	}
	if removed > 0 {
		l.Info("Pruned archived reports", zap.Int("removed", removed))
	}
}
