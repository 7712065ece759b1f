package history

import (
	"context"

	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements loader.Feature and loader.RunHook.
type Feature struct {
	store   *Store
	handler *Handler
	logger  *zap.Logger
}

// NewFeature creates the history feature. A nil db disables it.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	f := &Feature{logger: logger}
	if db != nil {
		f.store = NewStore(db)
		f.handler = NewHandler(f.store, logger)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "history"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.store != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Store returns the run store, or nil when disabled.
func (f *Feature) Store() *Store {
	return f.store
}

// BeforeRun does nothing; runs are recorded once finished.
func (f *Feature) BeforeRun(ctx context.Context, runID string) {}

// AfterRun records the pass. Failures are logged and never affect the pass.
func (f *Feature) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	if _, recErr := f.store.Record(context.WithoutCancel(ctx), report, err); recErr != nil {
		f.logger.Warn("Failed to record run history", zap.String("run_id", report.RunID), zap.Error(recErr))
	}
}
