package notify

import (
	"context"
	"errors"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature and loader.RunHook.
type Feature struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewFeature creates the notification feature from its configuration.
func NewFeature(cfg Config, logger *zap.Logger) *Feature {
	var notifiers []Notifier
	if cfg.Desktop {
		notifiers = append(notifiers, NewDesktop())
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhook(cfg.WebhookURL, time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	return NewFeatureWith(logger, notifiers...)
}

// NewFeatureWith creates the feature with explicit notifiers.
func NewFeatureWith(logger *zap.Logger, notifiers ...Notifier) *Feature {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feature{notifiers: notifiers, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "notify"
}

// IsEnabled checks if at least one notifier is configured.
func (f *Feature) IsEnabled() bool {
	return len(f.notifiers) > 0
}

// Load registers nothing.
func (f *Feature) Load(app fiber.Router) error {
	return nil
}

// BeforeRun does nothing.
func (f *Feature) BeforeRun(ctx context.Context, runID string) {}

// AfterRun notifies every channel when the pass failed.
func (f *Feature) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	if err == nil && report.Error == "" {
		return
	}
	msg := NewMessage(report, err)
	ctx = context.WithoutCancel(ctx)

	for _, n := range f.notifiers {
		nerr := n.Notify(ctx, msg)
		switch {
		case errors.Is(nerr, ErrUnavailable):
			f.logger.Debug("Notifier unavailable", zap.String("notifier", n.Name()))
		case nerr != nil:
			f.logger.Warn("Failed to send notification", zap.String("notifier", n.Name()), zap.Error(nerr))
		}
	}
}
