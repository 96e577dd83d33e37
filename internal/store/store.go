// Package store persists the catalog mirror in a local SQLite database and
// computes the change set that gates detail fetching.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reqmirror/steamreqs/internal/clock"
)

// Platform identifies the target operating-system family of a requirement
// record.
type Platform string

// Platforms tracked per app.
const (
	PlatformPC    Platform = "pc"
	PlatformMac   Platform = "mac"
	PlatformLinux Platform = "linux"
)

// Level identifies the requirement tier.
type Level string

// Requirement tiers tracked per platform.
const (
	LevelMinimum     Level = "minimum"
	LevelRecommended Level = "recommended"
)

// schema creates the mirror tables. The catalog is append-only; requirement
// rows are keyed (appid, platform, level) with upsert semantics.
const schema = `
CREATE TABLE IF NOT EXISTS apps (
	appid INTEGER PRIMARY KEY,
	name TEXT,
	last_modified INTEGER,
	price_change_number INTEGER,
	type TEXT,
	platforms_json TEXT,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS requirements (
	appid INTEGER NOT NULL,
	platform TEXT NOT NULL,
	level TEXT NOT NULL,

	os_text TEXT,
	cpu_text TEXT,
	gpu_text TEXT,
	notes_text TEXT,

	ram_gb REAL,
	vram_gb REAL,
	storage_gb REAL,

	dx_version REAL,
	opengl_version REAL,
	vulkan INTEGER,

	raw_html TEXT,
	parsed_json TEXT,
	updated_at TEXT,

	PRIMARY KEY (appid, platform, level),
	FOREIGN KEY (appid) REFERENCES apps(appid)
);

CREATE INDEX IF NOT EXISTS idx_apps_last_modified ON apps(last_modified);
CREATE INDEX IF NOT EXISTS idx_req_platform_level ON requirements(platform, level);
`

// Store wraps the SQLite connection. All writes happen on the single crawl
// goroutine; durability comes from WAL journaling.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Open creates the parent directory if needed, opens the database, applies
// pragmas and the schema. An unopenable path is a fatal condition for the
// caller.
func Open(path string, clk clock.Clock) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, clock: clk}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *Store) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

// execContext is a small helper for single statements outside transactions.
func (s *Store) execContext(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}
