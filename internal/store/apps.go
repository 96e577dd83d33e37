package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CatalogApp is one discovered catalog entry as seen on a discovery page.
type CatalogApp struct {
	AppID             int64
	Name              string
	LastModified      int64
	PriceChangeNumber int64
}

// AppRow is a stored catalog entry, read back for export.
type AppRow struct {
	AppID         int64
	Name          sql.NullString
	LastModified  int64
	Type          sql.NullString
	PlatformsJSON sql.NullString
	UpdatedAt     sql.NullString
}

// UpsertAppsAndDiff stores a page of discovered apps and returns the appids
// that are new or whose revision marker advanced, in input order. Entries
// whose marker is unchanged (or reported as zero) are left untouched; this
// diff is the sole gate on expensive detail fetches. The whole page commits
// in one transaction.
func (s *Store) UpsertAppsAndDiff(ctx context.Context, apps []CatalogApp) ([]int64, error) {
	if len(apps) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin diff tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	changed := make([]int64, 0, len(apps))

	for _, app := range apps {
		var stored sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT last_modified FROM apps WHERE appid = ?`, app.AppID,
		).Scan(&stored)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO apps(appid, name, last_modified, price_change_number, updated_at)
				 VALUES(?,?,?,?,?)`,
				app.AppID, app.Name, app.LastModified, app.PriceChangeNumber, now,
			); err != nil {
				return nil, fmt.Errorf("insert app %d: %w", app.AppID, err)
			}
			changed = append(changed, app.AppID)
		case err != nil:
			return nil, fmt.Errorf("lookup app %d: %w", app.AppID, err)
		case app.LastModified != 0 && app.LastModified != stored.Int64:
			if _, err := tx.ExecContext(ctx,
				`UPDATE apps
				 SET name = ?, last_modified = ?, price_change_number = ?, updated_at = ?
				 WHERE appid = ?`,
				app.Name, app.LastModified, app.PriceChangeNumber, now, app.AppID,
			); err != nil {
				return nil, fmt.Errorf("update app %d: %w", app.AppID, err)
			}
			changed = append(changed, app.AppID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit diff tx: %w", err)
	}
	return changed, nil
}

// UpdateAppDetails refreshes the catalog attributes of one app from its
// detail payload.
func (s *Store) UpdateAppDetails(ctx context.Context, appID int64, name, appType string, platformsJSON *string) error {
	err := s.execContext(ctx,
		`UPDATE apps SET name = ?, type = ?, platforms_json = ?, updated_at = ? WHERE appid = ?`,
		name, appType, platformsJSON, s.now(), appID,
	)
	if err != nil {
		return fmt.Errorf("update app details %d: %w", appID, err)
	}
	return nil
}

// ListApps returns all catalog entries ordered by appid, for the export
// projection.
func (s *Store) ListApps(ctx context.Context) ([]AppRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT appid, name, COALESCE(last_modified, 0), type, platforms_json, updated_at
		 FROM apps ORDER BY appid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	var out []AppRow
	for rows.Next() {
		var row AppRow
		if err := rows.Scan(&row.AppID, &row.Name, &row.LastModified, &row.Type, &row.PlatformsJSON, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan app row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return out, nil
}
