package runs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

func TestFilePersistence(t *testing.T) {
	dir := t.TempDir()
	persistence, err := NewFilePersistence(filepath.Join(dir, "runs"))
	require.NoError(t, err)

	run := newRun("example", time.Now().UTC().Truncate(time.Second))
	run.ID = "run-1"
	run.Histogram = []engine.HistogramBucket{{Saving: 2, Count: 14}, {Saving: 64, Count: 1}}
	run.Duration = 1500 * time.Microsecond

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, persistence.Save(run))
		assert.True(t, persistence.Exists("run-1"))

		loaded, err := persistence.Load("run-1")
		require.NoError(t, err)
		if diff := cmp.Diff(run, loaded); diff != "" {
			t.Errorf("Loaded run differs (-saved +loaded):\n%s", diff)
		}
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "runs", "notes.txt"), []byte("x"), 0644))
		ids, err := persistence.ListAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"run-1"}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, persistence.Delete("run-1"))
		assert.False(t, persistence.Exists("run-1"))
		assert.ErrorIs(t, persistence.Delete("run-1"), ErrRunNotFound)

		_, err := persistence.Load("run-1")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("rejects unsafe ids", func(t *testing.T) {
		bad := newRun("example", time.Now())
		bad.ID = "../escape"
		assert.ErrorIs(t, persistence.Save(bad), ErrInvalidRunID)
		assert.False(t, persistence.Exists("../escape"))
		assert.Error(t, persistence.Save(nil))
	})
}

func TestManager_WithPersistence(t *testing.T) {
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir)
	require.NoError(t, err)

	m := NewManagerWithPersistence(persistence)
	run := newRun("example", time.Now())
	require.NoError(t, m.Record(run))
	assert.FileExists(t, filepath.Join(dir, run.ID+".json"))

	t.Run("reload on startup", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence)
		require.NoError(t, fresh.LoadPersistedRuns())
		assert.Equal(t, 1, fresh.Count())

		loaded, err := fresh.Get(run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Count, loaded.Count)
	})

	t.Run("lazy load", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence)
		loaded, err := fresh.Get(run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.MazeID, loaded.MazeID)
	})

	t.Run("prune orphans", func(t *testing.T) {
		other := newRun("example", time.Now())
		require.NoError(t, m.Record(other))
		require.NoError(t, os.Remove(filepath.Join(dir, other.ID+".json")))

		assert.Equal(t, 1, m.PruneOrphans())
		_, err := m.Get(other.ID)
		assert.ErrorIs(t, err, ErrRunNotFound)
		assert.Equal(t, 0, NewManager().PruneOrphans())
	})

	t.Run("expired runs leave storage", func(t *testing.T) {
		old := newRun("example", time.Now().Add(-48*time.Hour))
		require.NoError(t, m.Record(old))
		assert.Equal(t, 1, m.CleanupExpiredRuns(24*time.Hour))
		assert.False(t, persistence.Exists(old.ID))
	})

	t.Run("delete removes file", func(t *testing.T) {
		require.NoError(t, m.Delete(run.ID))
		assert.False(t, persistence.Exists(run.ID))
	})
}
