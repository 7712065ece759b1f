package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Spec bundles the collaborators and options of one reconciliation pass.
type Spec struct {
	// Source provides the events to mirror.
	Source Source

	// Mirror is the calendar being kept in sync.
	Mirror Mirror

	// Options controls horizon, dry-run and comparison rules.
	Options Options

	// Logger receives per-action logs. Nil disables logging.
	Logger *zap.Logger

	// RunID tags the report. Optional.
	RunID string
}

// Report describes the outcome of one pass. It is returned even when the pass fails,
// filled up to the failing phase.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	DryRun      bool      `json:"dry_run"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Plan        *Plan     `json:"plan,omitempty"`
	Result      *Result   `json:"result,omitempty"`
	// Phase and Error are set when the pass failed.
	Phase Phase  `json:"phase,omitempty"`
	Error string `json:"error,omitempty"`
}

// Counts returns the created, updated and deleted tallies of the pass.
func (r *Report) Counts() (created, updated, deleted int) {
	if r == nil {
		return 0, 0, 0
	}
	return r.Result.Counts()
}

// ReconcileWithPlan fetches both calendars over [now, now+horizon] and builds the plan.
// It does NOT execute actions; use ApplyPlan or Run for that.
func ReconcileWithPlan(ctx context.Context, spec *Spec) (*Report, error) {
	logger := spec.logger()
	opts := spec.Options

	now := opts.now()
	report := &Report{
		RunID:       spec.RunID,
		DryRun:      opts.DryRun,
		StartedAt:   now,
		WindowStart: now,
		WindowEnd:   now.AddDate(0, 0, opts.HorizonDays),
	}

	if err := spec.validate(); err != nil {
		return report.fail("", err)
	}
	report.Source = spec.Source.Name()

	// Pin now so planning and the fetch window agree.
	opts.Now = func() time.Time { return now }

	logger.Info("Reading source events",
		zap.String("source", report.Source),
		zap.Time("from", report.WindowStart),
		zap.Time("to", report.WindowEnd),
	)
	sources, err := spec.Source.FetchEvents(ctx, report.WindowStart, report.WindowEnd)
	if err != nil {
		return report.fail(PhaseFetchSource, asFetchError(err))
	}
	logSourceSummary(logger, sources, opts.Location())

	mirrors, err := spec.Mirror.FetchEvents(ctx, report.WindowStart, report.WindowEnd)
	if err != nil {
		return report.fail(PhaseFetchMirror, asFetchError(err))
	}
	logger.Info("Read mirror events", zap.Int("count", len(mirrors)))

	index := BuildIndex(mirrors)
	for _, ref := range index.Duplicates {
		logger.Warn("Source reference carried by several mirror events, last one wins", zap.String("source_ref", ref))
	}

	plan, err := BuildPlan(sources, index, opts)
	report.Plan = plan
	if err != nil {
		return report.fail(PhasePlan, err)
	}

	return report, nil
}

// Run performs one full pass: fetch, plan, then execute.
// Fatal errors are returned as *PhaseError naming the failing phase.
func Run(ctx context.Context, spec *Spec) (*Report, error) {
	report, err := ReconcileWithPlan(ctx, spec)
	if err != nil {
		return report, err
	}

	logger := spec.logger()
	printPlan(logger, report.Plan)

	result, err := ApplyPlan(ctx, spec.Mirror, report.Plan, spec.Options, logger)
	report.Result = result
	if err != nil {
		return report.fail(PhaseExecute, err)
	}

	report.FinishedAt = time.Now().UTC()
	created, updated, deleted := result.Counts()
	logger.Info("Synchronization finished",
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("deleted", deleted),
		zap.Int("delete_failed", result.DeleteFailed),
		zap.Bool("dry_run", result.DryRun),
	)
	return report, nil
}

func (s *Spec) validate() error {
	if s.Source == nil {
		return fmt.Errorf("%w: no source calendar configured", ErrConfiguration)
	}
	if s.Mirror == nil {
		return fmt.Errorf("%w: no mirror calendar configured", ErrConfiguration)
	}
	if s.Options.HorizonDays <= 0 {
		return fmt.Errorf("%w: horizon must be at least one day, got %d", ErrConfiguration, s.Options.HorizonDays)
	}
	return nil
}

func (s *Spec) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (r *Report) fail(phase Phase, err error) (*Report, error) {
	r.FinishedAt = time.Now().UTC()
	r.Phase = phase
	r.Error = err.Error()
	if phase == "" {
		return r, err
	}
	return r, &PhaseError{Phase: phase, Err: err}
}

// logSourceSummary logs every fetched source event in the display timezone.
func logSourceSummary(logger *zap.Logger, events []SourceEvent, loc *time.Location) {
	logger.Info("Read source events", zap.Int("count", len(events)))
	for _, ev := range events {
		if ev.AllDay {
			logger.Debug("Source event",
				zap.String("date", ev.Start.UTC().Format(DateLayout)),
				zap.String("title", ev.Title),
				zap.Bool("all_day", true),
			)
			continue
		}
		logger.Debug("Source event",
			zap.String("when", ev.Start.In(loc).Format("02/01 15:04")+" → "+ev.End.In(loc).Format("15:04")),
			zap.String("title", ev.Title),
			zap.String("location", ev.Location),
		)
	}
}

// printPlan logs the plan summary and a sample of its actions.
func printPlan(logger *zap.Logger, plan *Plan) {
	s := plan.Summary
	logger.Info("Reconciliation plan",
		zap.Int("source_events", s.SourceEvents),
		zap.Int("mirror_events", s.MirrorEvents),
		zap.Int("creates", s.Creates),
		zap.Int("updates", s.Updates),
		zap.Int("deletes", s.Deletes),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("protected_past", s.ProtectedPast),
		zap.Int("duplicate_refs", s.DuplicateRefs),
	)
}
