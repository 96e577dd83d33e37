package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reqmirror/steamreqs/internal/requirements"
)

// ReqRow is a stored requirement record, read back for export.
type ReqRow struct {
	AppID    int64
	Platform Platform
	Level    Level

	OSText    sql.NullString
	CPUText   sql.NullString
	GPUText   sql.NullString
	NotesText sql.NullString

	RAMGB     sql.NullFloat64
	VRAMGB    sql.NullFloat64
	StorageGB sql.NullFloat64

	DXVersion     sql.NullFloat64
	OpenGLVersion sql.NullFloat64
	Vulkan        bool

	RawHTML    sql.NullString
	ParsedJSON sql.NullString
	UpdatedAt  sql.NullString
}

// UpsertRequirement stores one normalized record under (appid, platform,
// level). The write is a full replace of every column: a later fetch that
// parsed less information than an earlier one overwrites, nulling fields.
// That replace-not-merge semantic is deliberate; the retained raw_html and
// parsed_json columns make a merge policy implementable later without
// refetching.
func (s *Store) UpsertRequirement(ctx context.Context, appID int64, platform Platform, level Level, rec requirements.Record) error {
	vulkan := 0
	if rec.Vulkan {
		vulkan = 1
	}
	err := s.execContext(ctx, `
		INSERT INTO requirements(
			appid, platform, level,
			os_text, cpu_text, gpu_text, notes_text,
			ram_gb, vram_gb, storage_gb,
			dx_version, opengl_version, vulkan,
			raw_html, parsed_json, updated_at
		) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(appid, platform, level) DO UPDATE SET
			os_text=excluded.os_text,
			cpu_text=excluded.cpu_text,
			gpu_text=excluded.gpu_text,
			notes_text=excluded.notes_text,
			ram_gb=excluded.ram_gb,
			vram_gb=excluded.vram_gb,
			storage_gb=excluded.storage_gb,
			dx_version=excluded.dx_version,
			opengl_version=excluded.opengl_version,
			vulkan=excluded.vulkan,
			raw_html=excluded.raw_html,
			parsed_json=excluded.parsed_json,
			updated_at=excluded.updated_at`,
		appID, string(platform), string(level),
		rec.OSText, rec.CPUText, rec.GPUText, rec.NotesText,
		rec.RAMGB, rec.VRAMGB, rec.StorageGB,
		rec.DXVersion, rec.OpenGLVersion, vulkan,
		rec.RawHTML, rec.ParsedJSON, s.now(),
	)
	if err != nil {
		return fmt.Errorf("upsert requirement %d/%s/%s: %w", appID, platform, level, err)
	}
	return nil
}

// ListRequirements returns all requirement records ordered by appid, for
// the export projection.
func (s *Store) ListRequirements(ctx context.Context) ([]ReqRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT appid, platform, level,
			os_text, cpu_text, gpu_text, notes_text,
			ram_gb, vram_gb, storage_gb,
			dx_version, opengl_version, COALESCE(vulkan, 0),
			raw_html, parsed_json, updated_at
		FROM requirements ORDER BY appid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	var out []ReqRow
	for rows.Next() {
		var (
			row    ReqRow
			vulkan int64
		)
		if err := rows.Scan(
			&row.AppID, &row.Platform, &row.Level,
			&row.OSText, &row.CPUText, &row.GPUText, &row.NotesText,
			&row.RAMGB, &row.VRAMGB, &row.StorageGB,
			&row.DXVersion, &row.OpenGLVersion, &vulkan,
			&row.RawHTML, &row.ParsedJSON, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan requirement row: %w", err)
		}
		row.Vulkan = vulkan != 0
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}
	return out, nil
}
