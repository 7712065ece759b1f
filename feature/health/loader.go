package health

import (
	"context"
	"fmt"

	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature and loader.RunHook.
type Feature struct {
	cfg    Config
	pinger *Pinger
	logger *zap.Logger
}

// NewFeature creates the health ping feature.
func NewFeature(cfg Config, logger *zap.Logger) *Feature {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feature{cfg: cfg, pinger: NewPinger(cfg), logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "health"
}

// IsEnabled checks if a check URL is configured.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled()
}

// Load registers nothing.
func (f *Feature) Load(app fiber.Router) error {
	return nil
}

// BeforeRun sends the start signal.
func (f *Feature) BeforeRun(ctx context.Context, runID string) {
	f.send(ctx, SignalStart, "")
}

// AfterRun sends the success or fail signal.
func (f *Feature) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	ctx = context.WithoutCancel(ctx)
	if err != nil || report.Error != "" {
		f.send(ctx, SignalFail, failureMessage(report, err))
		return
	}
	f.send(ctx, SignalSuccess, successMessage(report))
}

func (f *Feature) send(ctx context.Context, signal Signal, message string) {
	if err := f.pinger.Ping(ctx, signal, message); err != nil {
		f.logger.Warn("Health ping failed", zap.String("signal", string(signal)), zap.Error(err))
		return
	}
	f.logger.Debug("Health ping sent", zap.String("signal", string(signal)))
}

func successMessage(report *reconcile.Report) string {
	created, updated, deleted := report.Counts()
	msg := fmt.Sprintf("Synchronization finished: %d created, %d updated, %d deleted", created, updated, deleted)
	if report.DryRun {
		msg += " (dry run)"
	}
	return msg
}

func failureMessage(report *reconcile.Report, err error) string {
	if report.Error != "" {
		return report.Error
	}
	return err.Error()
}
