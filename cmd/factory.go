package cmd

import (
	"context"
	"fmt"
	"time"

	"calendar-mirror/core/config"
	"calendar-mirror/core/reconcile"
	"calendar-mirror/feature/exchange"
	"calendar-mirror/feature/gcal"
	"calendar-mirror/feature/ics"
	"calendar-mirror/feature/mirror"

	"go.uber.org/zap"
)

// newFactory builds the source and mirror clients of a pass.
// Credentials are loaded on every call so a refreshed token is picked up.
func newFactory(cfg *config.Config, loc *time.Location, l *zap.Logger) mirror.Factory {
	return func(ctx context.Context) (reconcile.Source, reconcile.Mirror, error) {
		source, err := newSource(cfg, loc, l)
		if err != nil {
			return nil, nil, err
		}

		httpClient, err := gcal.HTTPClient(ctx, cfg.Google)
		if err != nil {
			return nil, nil, err
		}
		api, err := gcal.NewLowLevelAPI(ctx, httpClient)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: creating calendar service: %w", reconcile.ErrConfiguration, err)
		}
		return source, gcal.NewClient(cfg.Google, api, l), nil
	}
}

func newSource(cfg *config.Config, loc *time.Location, l *zap.Logger) (reconcile.Source, error) {
	switch cfg.Sync.Source {
	case mirror.SourceExchange:
		return exchange.NewClient(cfg.Exchange, loc, l), nil
	case mirror.SourceICS:
		return ics.NewClient(cfg.ICS, loc, l), nil
	default:
		return nil, fmt.Errorf("%w: unsupported source %q", reconcile.ErrConfiguration, cfg.Sync.Source)
	}
}
