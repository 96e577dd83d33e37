package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLoadCursor_Missing(t *testing.T) {
	t.Parallel()

	c, err := LoadCursor(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, int64(0), c.LastAppID)
}

func TestSaveAndLoadCursor(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "checkpoint.json")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, SaveCursor(path, 12345, now))

	c, err := LoadCursor(path)
	require.NoError(t, err)
	require.Equal(t, int64(12345), c.LastAppID)
	require.Equal(t, now, c.UpdatedAt)

	// Overwrite; the replacement is atomic so no temp files may linger.
	require.NoError(t, SaveCursor(path, 67890, now.Add(time.Hour)))
	c, err = LoadCursor(path)
	require.NoError(t, err)
	require.Equal(t, int64(67890), c.LastAppID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadCursor_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadCursor(path)
	require.Error(t, err)
}

func TestSaveRunState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last_run.json")
	state := RunState{
		RunID:      uuid.NewString(),
		StartedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC),
		Pages:      4,
		Indexed:    200000,
		Changed:    1234,
		LastAppID:  99999,
	}
	require.NoError(t, SaveRunState(path, state))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got RunState
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, state, got)
}
