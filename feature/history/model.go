package history

import (
	"time"

	"calendar-mirror/core/reconcile"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// SyncRun is one recorded reconciliation pass.
type SyncRun struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RunID         string    `gorm:"size:36;uniqueIndex" json:"run_id"`
	Source        string    `gorm:"size:32" json:"source"`
	Status        string    `gorm:"size:16;index" json:"status"`
	DryRun        bool      `json:"dry_run"`
	Phase         string    `gorm:"size:32" json:"phase,omitempty"`
	Error         string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt     time.Time `gorm:"index" json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	SourceEvents  int       `json:"source_events"`
	MirrorEvents  int       `json:"mirror_events"`
	Unchanged     int       `json:"unchanged"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Deleted       int       `json:"deleted"`
	DeleteFailed  int       `json:"delete_failed"`
	ProtectedPast int       `json:"protected_past"`
	DuplicateRefs int       `json:"duplicate_refs"`
}

// TableName pins the table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// Duration returns how long the pass took.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FromReport flattens a report into a row.
func FromReport(report *reconcile.Report, err error) SyncRun {
	run := SyncRun{
		RunID:       report.RunID,
		Source:      report.Source,
		Status:      StatusSuccess,
		DryRun:      report.DryRun,
		Phase:       string(report.Phase),
		Error:       report.Error,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
		WindowStart: report.WindowStart,
		WindowEnd:   report.WindowEnd,
	}
	if err != nil {
		run.Status = StatusFailed
		if run.Error == "" {
			run.Error = err.Error()
		}
	}

	if p := report.Plan; p != nil {
		run.SourceEvents = p.Summary.SourceEvents
		run.MirrorEvents = p.Summary.MirrorEvents
		run.Unchanged = p.Summary.Unchanged
		run.ProtectedPast = p.Summary.ProtectedPast
		run.DuplicateRefs = p.Summary.DuplicateRefs
	}
	run.Created, run.Updated, run.Deleted = report.Counts()
	if report.Result != nil {
		run.DeleteFailed = report.Result.DeleteFailed
	}
	return run
}
