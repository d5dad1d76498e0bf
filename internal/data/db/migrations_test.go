package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "versions are contiguous")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		file     string
		version  int
		name     string
		up       bool
		wantErrs bool
	}{
		{file: "0001_init.up.sql", version: 1, name: "init", up: true},
		{file: "0012_add_lessons.down.sql", version: 12, name: "add_lessons"},
		{file: "0001_init.sql", wantErrs: true},
		{file: "init.up.sql", wantErrs: true},
		{file: "abcd_init.up.sql", wantErrs: true},
		{file: "0000_init.up.sql", wantErrs: true},
		{file: "0001_.up.sql", wantErrs: true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, up, err := parseFilename(tt.file)
			if tt.wantErrs {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.up, up)
		})
	}
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	applied, err := appliedVersions(ctx, database.Conn())
	require.NoError(t, err)

	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.Len(t, applied, len(migrations))

	for _, table := range []string{"notification_logs", "lessons"} {
		_, err := database.Conn().ExecContext(ctx, "SELECT 1 FROM "+table+" LIMIT 0")
		require.NoError(t, err, "%s table should exist", table)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	assert.NoError(t, migrateUp(context.Background(), database.Conn()))
}

func TestMigrateDown(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()
	require.NoError(t, migrateUp(ctx, conn))

	_, err := conn.ExecContext(ctx, `
		INSERT INTO notification_logs (user_id, records, updated_at) VALUES ('u1', '[]', 1)
	`)
	require.NoError(t, err)

	require.NoError(t, MigrateDown(ctx, conn, 1))

	_, err = conn.ExecContext(ctx, "SELECT 1 FROM lessons LIMIT 0")
	require.Error(t, err, "lessons should not exist after down migration")

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM notification_logs").Scan(&count))
	assert.Equal(t, 1, count, "earlier tables keep their rows")

	require.NoError(t, migrateUp(ctx, conn))
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM lessons LIMIT 0")
	require.NoError(t, err, "re-applying restores the table")
}

func TestMigrateDown_InvalidN(t *testing.T) {
	conn := openRawConn(t)
	require.Error(t, MigrateDown(context.Background(), conn, 0))
}

func TestOpen_AppliesDefaults(t *testing.T) {
	database, err := Open(t.TempDir(), OpenOptions{})
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	assert.Equal(t, DefaultOpenOptions().MaxOpenConns, database.Conn().Stats().MaxOpenConnections)
}

func TestWithTx_RollsBack(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO notification_logs (user_id, records, updated_at) VALUES ('u1', '[]', 1)")
		require.NoError(t, err)
		return fmt.Errorf("abort")
	})
	require.EqualError(t, err, "abort")

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM notification_logs").Scan(&count))
	assert.Equal(t, 0, count)
}
