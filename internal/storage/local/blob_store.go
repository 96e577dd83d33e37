// Package local implements a blob store backed by the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore writes export artifacts under a base directory.
type BlobStore struct {
	baseDir string
}

// New creates a filesystem-backed blob store rooted at baseDir, creating the
// directory if it does not exist.
func New(baseDir string) (*BlobStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path %q is not a directory", baseDir)
	}
	return &BlobStore{baseDir: baseDir}, nil
}

// Save writes data to objectName relative to the base directory. Writes are
// atomic: data lands in a temp file first and is renamed into place, so a
// reader of the export tree never observes a partially written artifact.
func (s *BlobStore) Save(_ context.Context, objectName string, data []byte) error {
	if strings.TrimSpace(objectName) == "" {
		return fmt.Errorf("object name is required")
	}

	fullPath := filepath.Join(s.baseDir, objectName)

	// Reject object names that escape the base directory.
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("object name %q escapes base directory", objectName)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
