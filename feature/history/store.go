package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calendar-mirror/core/database"
	"calendar-mirror/core/reconcile"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no run has been recorded yet.
var ErrNotFound = errors.New("no recorded run")

// DefaultLimit bounds List when no limit is given.
const DefaultLimit = 20

// requiredColumns must exist after migration.
var requiredColumns = []string{"run_id", "status", "phase", "error", "started_at", "created", "updated", "deleted"}

// Store persists SyncRun rows.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the sync_runs table and checks its columns.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&SyncRun{}); err != nil {
		return fmt.Errorf("failed to migrate history: %w", err)
	}

	missing, err := database.MissingColumns(s.db.WithContext(ctx), SyncRun{}.TableName(), requiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("history table is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Record stores the outcome of a pass.
func (s *Store) Record(ctx context.Context, report *reconcile.Report, runErr error) (*SyncRun, error) {
	if report == nil {
		return nil, errors.New("nil report")
	}
	run := FromReport(report, runErr)
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to record run %s: %w", run.RunID, err)
	}
	return &run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var runs []SyncRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run or ErrNotFound.
func (s *Store) Latest(ctx context.Context) (*SyncRun, error) {
	var run SyncRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}
	return &run, nil
}
