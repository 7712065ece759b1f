package integrity

import (
	"context"
	"fmt"

	"calendar-mirror/core/storage"
	"calendar-mirror/feature/gcal"
	"calendar-mirror/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles readiness checks.
type Service struct {
	client     storage.Client
	storageCfg storage.Config
	db         *gorm.DB
	google     gcal.Config
	logger     *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil when
// the archive or the run history is disabled.
func NewService(client storage.Client, storageCfg storage.Config, db *gorm.DB, google gcal.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:     client,
		storageCfg: storageCfg,
		db:         db,
		google:     google,
		logger:     logger,
	}
}

// CheckStorage reports the state of the archive bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, fmt.Errorf("report archive is disabled")
	}
	return checks.CheckStorage(ctx, s.client, s.storageCfg.Bucket, s.storageCfg.Prefix)
}

// FixStorage creates the archive bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("report archive is disabled")
	}
	return checks.FixStorage(ctx, s.client, s.storageCfg.Bucket, s.storageCfg.Region, s.logger)
}

// CheckSchema compares the run history table with its model.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckHistorySchema(s.db)
}

// CheckCredentials verifies the Google credential files.
func (s *Service) CheckCredentials() *checks.CredentialsReport {
	return checks.CheckGoogleCredentials(s.google)
}

// Report runs every check. Failing checks are reported, not returned.
func (s *Service) Report(ctx context.Context) map[string]any {
	report := make(map[string]any)

	report["credentials"] = s.CheckCredentials()

	if st, err := s.CheckStorage(ctx); err != nil {
		report["storage"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = st
	}

	if schema, err := s.CheckSchema(); err != nil {
		report["schema"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}
	return report
}
