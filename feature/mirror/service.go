package mirror

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"calendar-mirror/core/loader"
	"calendar-mirror/core/logger"
	"calendar-mirror/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Factory builds the collaborators of one pass.
// It is called per pass so expired credentials are reloaded.
type Factory func(ctx context.Context) (reconcile.Source, reconcile.Mirror, error)

// Overrides adjust the configured options for a single pass.
type Overrides struct {
	// HorizonDays replaces the configured horizon when positive.
	HorizonDays int `json:"days"`
	// DryRun replaces the configured dry-run flag when set.
	DryRun *bool `json:"dry_run"`
}

// Service runs reconciliation passes. Passes never overlap: a trigger arriving
// while a pass runs waits for it and receives the same report.
type Service struct {
	cfg     Config
	factory Factory
	logger  *zap.Logger

	hooks   []loader.RunHook
	sf      singleflight.Group
	running atomic.Bool

	mu   sync.RWMutex
	last *reconcile.Report

	// now is overridden in tests.
	now func() time.Time
}

// NewService creates a sync service.
func NewService(cfg Config, factory Factory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, factory: factory, logger: logger}
}

// AddHooks registers hooks called around every pass.
func (s *Service) AddHooks(hooks ...loader.RunHook) {
	s.hooks = append(s.hooks, hooks...)
}

// Running reports whether a pass is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Last returns the report of the latest finished pass, or nil.
func (s *Service) Last() *reconcile.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Sync performs one pass, or joins the pass already running.
// The report is returned even when the pass fails.
func (s *Service) Sync(ctx context.Context, o Overrides) (*reconcile.Report, error) {
	v, err, shared := s.sf.Do("sync", func() (any, error) {
		return s.run(ctx, o)
	})
	if shared {
		s.logger.Debug("Joined a pass already in progress")
	}
	report, _ := v.(*reconcile.Report)
	return report, err
}

func (s *Service) run(ctx context.Context, o Overrides) (*reconcile.Report, error) {
	s.running.Store(true)
	defer s.running.Store(false)

	runID := uuid.NewString()
	l := logger.WithRunID(s.logger, runID)

	opts := s.options(o)

	for _, h := range s.hooks {
		h.BeforeRun(ctx, runID)
	}

	var report *reconcile.Report
	source, mirror, err := s.factory(ctx)
	if err != nil {
		now := s.clock()
		report = &reconcile.Report{
			RunID:      runID,
			Source:     s.cfg.Source,
			DryRun:     opts.DryRun,
			StartedAt:  now,
			FinishedAt: now,
			Phase:      reconcile.PhasePrepare,
			Error:      err.Error(),
		}
		err = &reconcile.PhaseError{Phase: reconcile.PhasePrepare, Err: fmt.Errorf("preparing calendars: %w", err)}
	} else {
		report, err = reconcile.Run(ctx, &reconcile.Spec{
			Source:  source,
			Mirror:  mirror,
			Options: opts,
			Logger:  l,
			RunID:   runID,
		})
		if report.FinishedAt.IsZero() {
			report.FinishedAt = s.clock()
		}
	}

	if err != nil {
		l.Error("Synchronization failed", zap.String("phase", string(report.Phase)), zap.Error(err))
	}

	for _, h := range s.hooks {
		h.AfterRun(ctx, report, err)
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	return report, err
}

func (s *Service) options(o Overrides) reconcile.Options {
	opts := s.cfg.Options()
	if o.HorizonDays > 0 {
		opts.HorizonDays = o.HorizonDays
	}
	if o.DryRun != nil {
		opts.DryRun = *o.DryRun
	}
	if s.now != nil {
		opts.Now = s.now
	}
	return opts
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}
