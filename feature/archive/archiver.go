package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"calendar-mirror/core/reconcile"
	"calendar-mirror/core/storage"

	"github.com/hashicorp/go-multierror"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver uploads run reports to the bucket and prunes old ones.
type Archiver struct {
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewArchiver creates an archiver writing to cfg.Bucket under cfg.Prefix.
func NewArchiver(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, cfg: cfg, logger: logger, now: time.Now}
}

// Key returns the object name of a report: <prefix>/YYYY/MM/DD/<run_id>.json.
func (a *Archiver) Key(report *reconcile.Report) string {
	started := report.StartedAt.UTC()
	if started.IsZero() {
		started = a.now().UTC()
	}
	return path.Join(a.cfg.Prefix, started.Format("2006/01/02"), report.RunID+".json")
}

// Upload stores the report as indented JSON and returns its key.
func (a *Archiver) Upload(ctx context.Context, report *reconcile.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := a.Key(report)
	_, err = a.client.PutObject(ctx, a.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}

// Prune removes reports older than the retention period and returns how many were removed.
func (a *Archiver) Prune(ctx context.Context) (int, error) {
	if a.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := a.now().AddDate(0, 0, -a.cfg.RetentionDays)

	var expired []minio.ObjectInfo
	prefix := a.cfg.Prefix
	if prefix != "" {
		prefix += "/"
	}
	for obj := range a.client.ListObjects(ctx, a.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if obj.LastModified.Before(cutoff) {
			expired = append(expired, obj)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	objects := make(chan minio.ObjectInfo, len(expired))
	for _, obj := range expired {
		objects <- obj
	}
	close(objects)

	var result *multierror.Error
	failed := 0
	for rerr := range a.client.RemoveObjects(ctx, a.cfg.Bucket, objects, minio.RemoveObjectsOptions{}) {
		failed++
		result = multierror.Append(result, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	return len(expired) - failed, result.ErrorOrNil()
}
