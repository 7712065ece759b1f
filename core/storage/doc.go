// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface so the report archive
// can be tested against core/storage/mocks. Both AWS S3 and self-hosted MinIO work.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
