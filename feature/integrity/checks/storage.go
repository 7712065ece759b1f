package checks

import (
	"context"
	"fmt"
	"strings"

	"calendar-mirror/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the state of the report archive.
type StorageReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	// Reports counts the archived reports under the prefix.
	Reports int `json:"reports"`
}

// CheckStorage reports whether the archive bucket exists and how many reports it holds.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return report, nil
	}
	report.Exists = true

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			report.Reports++
		}
	}
	return report, nil
}

// FixStorage creates the archive bucket.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Archive bucket ready", zap.String("bucket", bucket))
	return nil
}
