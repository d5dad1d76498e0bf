package stores

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/data/db"
)

func TestRecoverFromCorruption(t *testing.T) {
	at := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)

	t.Run("moves database and side files", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, db.FileName)
		for _, suffix := range []string{"", "-wal", "-shm"} {
			require.NoError(t, os.WriteFile(dbPath+suffix, []byte("corrupted"), 0o644))
		}

		backup, err := RecoverFromCorruption(dir, at)
		require.NoError(t, err)
		assert.Equal(t, dbPath+".corrupt.20260401-103000", backup)

		for _, suffix := range []string{"", "-wal", "-shm"} {
			_, err := os.Stat(dbPath + suffix)
			assert.ErrorIs(t, err, os.ErrNotExist, "original %q should be gone", suffix)
			_, err = os.Stat(backup + suffix)
			assert.NoError(t, err, "backup %q should exist", suffix)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		dir := t.TempDir()
		_, err := RecoverFromCorruption(dir, at)
		require.NoError(t, err)

		files, _ := filepath.Glob(filepath.Join(dir, "*.corrupt.*"))
		assert.Empty(t, files)
	})

	t.Run("database reopens after recovery", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, db.FileName), []byte("not a database"), 0o644))

		_, err := RecoverFromCorruption(dir, at)
		require.NoError(t, err)

		database, err := db.Open(dir, db.DefaultOpenOptions())
		require.NoError(t, err)
		_ = database.Close()
	})
}

func TestIsCorruptionError(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.False(t, IsCorruptionError(errors.New("no such table: lessons")))
	assert.False(t, IsBusyError(errors.New("database is locked")))
}
