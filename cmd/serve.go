package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendar-mirror/core/logger"
	"calendar-mirror/core/middleware/auth"
	"calendar-mirror/core/middleware/rayid"
	"calendar-mirror/feature/mirror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "calendar-mirror/docs/swagger"
)

// @title Calendar Mirror API
// @version 1.0
// @description Status and trigger API of the calendar mirror.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

var serveRunOnStart bool

// serveCmd runs passes on a schedule and exposes the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run passes on a schedule and serve the status API",
	Long: `Starts the HTTP server and runs a synchronization pass on SYNC_SCHEDULE
(cron syntax, e.g. "@every 15m" or "*/10 7-20 * * 1-5").

Public routes: GET /health, GET /metrics, GET /swagger/*.
Protected routes (API key): POST /sync, GET /runs, GET /runs/latest.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunOnStart, "run-on-start", true, "Run a pass as soon as the server starts")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	a, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	logg := a.logger
	zap.ReplaceGlobals(logg)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every log line of the request carries it
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/swagger/*", swagger.HandlerDefault)
	if err := a.manager.LoadPublic(app); err != nil {
		return err
	}

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
	if err := a.manager.LoadAll(app); err != nil {
		return err
	}

	service := a.mirror.Service()
	scheduled := func() {
		if _, err := service.Sync(ctx, mirror.Overrides{}); err != nil {
			logg.Warn("Scheduled pass failed", zap.Error(err))
		}
	}

	scheduler := cron.New(cron.WithLocation(a.loc))
	if _, err := scheduler.AddFunc(cfg.Sync.Schedule, scheduled); err != nil {
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", cfg.Sync.Schedule, err)
	}
	scheduler.Start()
	logg.Info("Scheduler started", zap.String("schedule", cfg.Sync.Schedule))

	if serveRunOnStart {
		go scheduled()
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(cfg.Server.Address())
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logg.Error("Server failed", zap.Error(err))
		}
	}

	logg.Info("Shutting down server...")
	// Wait for a running pass to finish before exiting
	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
