package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reqmirror/steamreqs/internal/requirements"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s, err := Open(filepath.Join(t.TempDir(), "mirror.sqlite"), clk)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s, clk
}

func TestOpen_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "mirror.sqlite")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestUpsertAppsAndDiff(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	// First discovery: everything is new.
	changed, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 10, Name: "Alpha", LastModified: 100},
		{AppID: 20, Name: "Beta", LastModified: 200},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, changed)

	// Rediscovery with identical markers: no changes.
	changed, err = s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 10, Name: "Alpha", LastModified: 100},
		{AppID: 20, Name: "Beta", LastModified: 200},
	})
	require.NoError(t, err)
	require.Empty(t, changed)

	// Marker advanced for one entry.
	changed, err = s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 10, Name: "Alpha", LastModified: 150},
		{AppID: 20, Name: "Beta", LastModified: 200},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{10}, changed)

	// A zero marker never flags a change.
	changed, err = s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 10, Name: "Alpha", LastModified: 0},
	})
	require.NoError(t, err)
	require.Empty(t, changed)
}

func TestUpsertAppsAndDiff_InputOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	changed, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 30, Name: "C", LastModified: 1},
		{AppID: 10, Name: "A", LastModified: 1},
		{AppID: 20, Name: "B", LastModified: 1},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{30, 10, 20}, changed)
}

func TestUpdateAppDetails(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{{AppID: 10, Name: "Alpha", LastModified: 1}})
	require.NoError(t, err)

	platforms := `{"windows":true,"linux":false}`
	require.NoError(t, s.UpdateAppDetails(ctx, 10, "Alpha Deluxe", "game", &platforms))

	apps, err := s.ListApps(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "Alpha Deluxe", apps[0].Name.String)
	require.Equal(t, "game", apps[0].Type.String)
	require.Equal(t, platforms, apps[0].PlatformsJSON.String)
}

func TestUpsertRequirement_Idempotent(t *testing.T) {
	t.Parallel()

	s, clk := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{{AppID: 10, Name: "Alpha", LastModified: 1}})
	require.NoError(t, err)

	markup := "OS: Windows 10<br>Memory: 8 GB RAM"
	rec := requirements.Build(&markup)

	require.NoError(t, s.UpsertRequirement(ctx, 10, PlatformPC, LevelMinimum, rec))
	first, err := s.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	clk.now = clk.now.Add(time.Hour)
	require.NoError(t, s.UpsertRequirement(ctx, 10, PlatformPC, LevelMinimum, rec))
	second, err := s.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// Identical except for the updated timestamp.
	require.NotEqual(t, first[0].UpdatedAt, second[0].UpdatedAt)
	first[0].UpdatedAt = second[0].UpdatedAt
	require.Equal(t, first[0], second[0])
}

func TestUpsertRequirement_FullReplace(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{{AppID: 10, Name: "Alpha", LastModified: 1}})
	require.NoError(t, err)

	rich := "OS: Windows 10<br>Memory: 8 GB RAM<br>Storage: 20 GB"
	require.NoError(t, s.UpsertRequirement(ctx, 10, PlatformPC, LevelMinimum, requirements.Build(&rich)))

	// A later fetch with less information overwrites, nulling fields.
	poor := "OS: Windows 10"
	require.NoError(t, s.UpsertRequirement(ctx, 10, PlatformPC, LevelMinimum, requirements.Build(&poor)))

	rows, err := s.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Windows 10", rows[0].OSText.String)
	require.False(t, rows[0].RAMGB.Valid)
	require.False(t, rows[0].StorageGB.Valid)
	require.Equal(t, poor, rows[0].RawHTML.String)
}

func TestUpsertRequirement_UnparseableKeepsAudit(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{{AppID: 10, Name: "Alpha", LastModified: 1}})
	require.NoError(t, err)

	markup := "completely unstructured blurb"
	require.NoError(t, s.UpsertRequirement(ctx, 10, PlatformMac, LevelRecommended, requirements.Build(&markup)))

	rows, err := s.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.False(t, rows[0].OSText.Valid)
	require.False(t, rows[0].RAMGB.Valid)
	require.Equal(t, markup, rows[0].RawHTML.String)
	require.True(t, rows[0].ParsedJSON.Valid)
}

func TestListOrdering(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertAppsAndDiff(ctx, []CatalogApp{
		{AppID: 30, Name: "C", LastModified: 1},
		{AppID: 10, Name: "A", LastModified: 1},
	})
	require.NoError(t, err)

	apps, err := s.ListApps(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(10), apps[0].AppID)
	require.Equal(t, int64(30), apps[1].AppID)
}
