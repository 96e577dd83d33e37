// Package checkpoint persists the discovery cursor and per-run summaries as
// small JSON files. Every write goes to a temporary file first and is
// renamed over the target, so a crash mid-write never corrupts the
// previously committed state.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cursor is the resumable discovery position: the highest appid of the last
// fully-processed discovery page.
type Cursor struct {
	LastAppID int64     `json:"last_appid"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunState summarizes one crawl invocation. It is written once at run end
// for observability and never consulted by the crawl itself.
type RunState struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pages      int       `json:"pages"`
	Indexed    int       `json:"indexed"`
	Changed    int       `json:"changed"`
	LastAppID  int64     `json:"last_appid"`
}

// LoadCursor reads the persisted cursor. A missing file is not an error and
// yields the zero cursor, starting discovery from the beginning.
func LoadCursor(path string) (Cursor, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Cursor{}, nil
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	return c, nil
}

// SaveCursor atomically replaces the checkpoint file.
func SaveCursor(path string, lastAppID int64, now time.Time) error {
	return writeJSON(path, Cursor{LastAppID: lastAppID, UpdatedAt: now.UTC()})
}

// SaveRunState atomically replaces the run-state file.
func SaveRunState(path string, state RunState) error {
	return writeJSON(path, state)
}

// File is a file-backed cursor handle threaded into the crawler, keeping the
// on-disk location out of the crawl loop itself.
type File struct {
	Path string
}

// LoadCursor reads the cursor value, zero when the file is absent.
func (f File) LoadCursor() (int64, error) {
	c, err := LoadCursor(f.Path)
	if err != nil {
		return 0, err
	}
	return c.LastAppID, nil
}

// SaveCursor atomically persists the cursor value.
func (f File) SaveCursor(lastAppID int64, now time.Time) error {
	return SaveCursor(f.Path, lastAppID, now)
}

func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create checkpoint dir %s: %w", dir, err)
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
