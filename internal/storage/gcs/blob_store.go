// Package gcs implements a blob store backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// BlobStore uploads export artifacts to a GCS bucket. Authentication uses
// Application Default Credentials.
type BlobStore struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// New creates a GCS client and verifies the bucket is reachable, so a bad
// bucket name fails at startup rather than mid-export.
func New(ctx context.Context, bucket string, logger *zap.Logger) (*BlobStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close gcs client after attrs check", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get attributes for bucket %q: %w", bucket, err)
	}

	return &BlobStore{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads data to objectName in the bucket. Close finalizes the upload,
// so a write error still attempts the close to release the session.
func (s *BlobStore) Save(ctx context.Context, objectName string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		if closeErr := w.Close(); closeErr != nil {
			s.logger.Warn("failed to close gcs writer after write failure",
				zap.String("object", objectName), zap.Error(closeErr))
		}
		return fmt.Errorf("write gcs object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer for %q: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying GCS client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}
