package cmd

import (
	"context"
	"fmt"
	"time"

	"calendar-mirror/core/config"
	"calendar-mirror/core/database"
	"calendar-mirror/core/loader"
	"calendar-mirror/core/logger"
	"calendar-mirror/core/reconcile"
	"calendar-mirror/core/storage"
	"calendar-mirror/feature/archive"
	"calendar-mirror/feature/health"
	"calendar-mirror/feature/history"
	"calendar-mirror/feature/integrity"
	"calendar-mirror/feature/metrics"
	"calendar-mirror/feature/mirror"
	"calendar-mirror/feature/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application holds everything a command needs to run passes.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	loc     *time.Location
	db      *gorm.DB
	manager *loader.Manager
	mirror  *mirror.Feature
	history *history.Feature
}

// loadConfig reads the configuration, applies command flags and validates it.
func loadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApplication wires the features around the sync service.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrConfiguration, err)
	}

	a := &application{cfg: cfg, logger: logg, loc: loc, manager: loader.NewManager()}

	// Run history is optional; a broken database never blocks a pass.
	if cfg.Database.Enabled {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Run history disabled: database connection failed", zap.Error(err))
		} else {
			a.db = conn
		}
	}
	a.history = history.NewFeature(a.db, logg)
	if a.history.IsEnabled() {
		if err := a.history.Store().Migrate(ctx); err != nil {
			logg.Warn("Run history disabled: migration failed", zap.Error(err))
			a.history = history.NewFeature(nil, logg)
		}
	}

	var store storage.Client
	if cfg.Storage.Enabled {
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Report archive disabled: storage client failed", zap.Error(err))
		} else if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Warn("Report archive disabled: bucket unavailable", zap.Error(err))
		} else {
			store = client
		}
	}

	a.mirror = mirror.NewFeature(cfg.Sync, newFactory(cfg, loc, logg), logg)

	a.manager.Register(a.mirror)
	a.manager.Register(a.history)
	a.manager.Register(archive.NewFeature(store, cfg.Storage, logg))
	a.manager.Register(integrity.NewFeature(store, cfg.Storage, a.db, cfg.Google, logg))
	a.manager.Register(metrics.NewFeature(cfg.Metrics))
	a.manager.Register(health.NewFeature(cfg.Health, logg))
	a.manager.Register(notify.NewFeature(cfg.Notify, logg))

	a.mirror.Service().AddHooks(a.manager.Hooks()...)

	for _, f := range a.manager.Enabled() {
		logg.Debug("Feature enabled", zap.String("feature", f.Name()))
	}
	return a, nil
}

// Close releases the database and flushes the logger.
func (a *application) Close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}
