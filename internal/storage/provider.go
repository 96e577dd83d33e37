// Package storage defines the blob storage abstraction used by the site data
// exporter. It lets the export pipeline stay independent of where mirror
// artifacts land (local filesystem or Google Cloud Storage).
package storage

import "context"

// Provider saves export artifacts to an object path in a blob store.
type Provider interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider discards everything. Useful for dry runs where the export is
// computed but not published.
type NoOpProvider struct{}

func (NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
