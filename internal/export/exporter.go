// Package export assembles the static site dataset from the mirror database:
// a compact index.json plus fixed-size shard files carrying the full
// per-platform requirement records.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/storage"
	"github.com/reqmirror/steamreqs/internal/store"
)

const indexVersion = 1

// Catalog is the read surface of the mirror database needed for an export.
type Catalog interface {
	ListApps(ctx context.Context) ([]store.AppRow, error)
	ListRequirements(ctx context.Context) ([]store.ReqRow, error)
}

// IndexEntry is one app in index.json, compact enough for client-side search.
type IndexEntry struct {
	AppID           int64   `json:"appid"`
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	HasRequirements bool    `json:"has_requirements"`
}

// Index is the top-level index.json document.
type Index struct {
	Version     int          `json:"version"`
	ShardSize   int          `json:"shard_size"`
	TotalApps   int          `json:"total_apps"`
	TotalShards int          `json:"total_shards"`
	Apps        []IndexEntry `json:"apps"`
}

// Requirement is one requirement record as published in a shard file. Fields
// the parser could not extract serialize as null, not as zero values.
type Requirement struct {
	OS        *string  `json:"os"`
	CPU       *string  `json:"cpu"`
	GPU       *string  `json:"gpu"`
	RAMGB     *float64 `json:"ram_gb"`
	VRAMGB    *float64 `json:"vram_gb"`
	StorageGB *float64 `json:"storage_gb"`
	DirectX   *float64 `json:"directx"`
	OpenGL    *float64 `json:"opengl"`
	Vulkan    bool     `json:"vulkan"`
	Notes     *string  `json:"notes"`
	RawHTML   *string  `json:"raw_html"`
}

// ShardEntry is one app in a shard file. Requirements is keyed by platform
// then tier and is null for apps with no requirement rows at all.
type ShardEntry struct {
	AppID        int64                             `json:"appid"`
	Name         *string                           `json:"name"`
	Type         *string                           `json:"type"`
	Requirements map[string]map[string]Requirement `json:"requirements"`
}

// Summary reports what an export produced.
type Summary struct {
	TotalApps   int
	TotalShards int
}

// Exporter writes the site dataset through a blob storage provider.
type Exporter struct {
	catalog   Catalog
	provider  storage.Provider
	shardSize int
	logger    *zap.Logger
}

// New constructs an Exporter.
func New(catalog Catalog, provider storage.Provider, shardSize int, logger *zap.Logger) (*Exporter, error) {
	if catalog == nil || provider == nil {
		return nil, fmt.Errorf("catalog and provider are required")
	}
	if shardSize <= 0 {
		return nil, fmt.Errorf("shard size must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{catalog: catalog, provider: provider, shardSize: shardSize, logger: logger}, nil
}

// Run reads the full mirror and publishes shards/shard_%05d.json files plus
// index.json. Shards are written before the index so a reader following a
// fresh index never references a shard that does not exist yet.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	apps, err := e.catalog.ListApps(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list apps: %w", err)
	}
	reqRows, err := e.catalog.ListRequirements(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list requirements: %w", err)
	}

	reqByApp := groupRequirements(reqRows)

	index := make([]IndexEntry, 0, len(apps))
	var shard []ShardEntry
	shardID := 0

	for _, app := range apps {
		name := nullString(app.Name)
		appType := nullString(app.Type)
		reqs, hasReqs := reqByApp[app.AppID]

		index = append(index, IndexEntry{
			AppID:           app.AppID,
			Name:            name,
			Type:            appType,
			HasRequirements: hasReqs,
		})
		shard = append(shard, ShardEntry{
			AppID:        app.AppID,
			Name:         name,
			Type:         appType,
			Requirements: reqs,
		})

		if len(shard) >= e.shardSize {
			if err := e.saveShard(ctx, shardID, shard); err != nil {
				return Summary{}, err
			}
			shardID++
			shard = nil
		}
	}
	if len(shard) > 0 {
		if err := e.saveShard(ctx, shardID, shard); err != nil {
			return Summary{}, err
		}
		shardID++
	}

	doc := Index{
		Version:     indexVersion,
		ShardSize:   e.shardSize,
		TotalApps:   len(index),
		TotalShards: shardID,
		Apps:        index,
	}
	if err := e.saveJSON(ctx, "index.json", doc); err != nil {
		return Summary{}, err
	}

	e.logger.Info("export complete",
		zap.Int("total_apps", len(index)),
		zap.Int("total_shards", shardID))
	return Summary{TotalApps: len(index), TotalShards: shardID}, nil
}

func (e *Exporter) saveShard(ctx context.Context, id int, entries []ShardEntry) error {
	return e.saveJSON(ctx, fmt.Sprintf("shards/shard_%05d.json", id), entries)
}

func (e *Exporter) saveJSON(ctx context.Context, objectName string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", objectName, err)
	}
	if err := e.provider.Save(ctx, objectName, data); err != nil {
		return fmt.Errorf("save %s: %w", objectName, err)
	}
	return nil
}

func groupRequirements(rows []store.ReqRow) map[int64]map[string]map[string]Requirement {
	out := map[int64]map[string]map[string]Requirement{}
	for _, r := range rows {
		byPlatform, ok := out[r.AppID]
		if !ok {
			byPlatform = map[string]map[string]Requirement{}
			out[r.AppID] = byPlatform
		}
		byLevel, ok := byPlatform[string(r.Platform)]
		if !ok {
			byLevel = map[string]Requirement{}
			byPlatform[string(r.Platform)] = byLevel
		}
		byLevel[string(r.Level)] = Requirement{
			OS:        nullString(r.OSText),
			CPU:       nullString(r.CPUText),
			GPU:       nullString(r.GPUText),
			RAMGB:     nullFloat(r.RAMGB),
			VRAMGB:    nullFloat(r.VRAMGB),
			StorageGB: nullFloat(r.StorageGB),
			DirectX:   nullFloat(r.DXVersion),
			OpenGL:    nullFloat(r.OpenGLVersion),
			Vulkan:    r.Vulkan,
			Notes:     nullString(r.NotesText),
			RawHTML:   nullString(r.RawHTML),
		}
	}
	return out
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
