package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB_PooledConnectionsShareSettings(t *testing.T) {
	sqlite, err := NewSQLiteDB(filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	t.Cleanup(sqlite.Close)

	assert.Zero(t, sqlite.DB.Stats().MaxOpenConnections, "file databases are not capped to one connection")

	ctx := context.Background()
	first, err := sqlite.DB.Connx(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := sqlite.DB.Connx(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, conn := range []interface {
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}{first, second} {
		var mode string
		require.NoError(t, conn.GetContext(ctx, &mode, "PRAGMA journal_mode"))
		assert.Equal(t, "wal", mode)

		var timeout int
		require.NoError(t, conn.GetContext(ctx, &timeout, "PRAGMA busy_timeout"))
		assert.Equal(t, 5000, timeout)

		var foreignKeys int
		require.NoError(t, conn.GetContext(ctx, &foreignKeys, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, foreignKeys)
	}
}

func TestNewSQLiteDB_ReadWhileWriting(t *testing.T) {
	sqlite, err := NewSQLiteDB(filepath.Join(t.TempDir(), "wal.db"))
	require.NoError(t, err)
	t.Cleanup(sqlite.Close)
	require.NoError(t, RunSQLiteMigrations(sqlite.DB.DB))

	ctx := context.Background()
	tx, err := sqlite.DB.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT INTO projects (id, name, client_name, status, created_at, updated_at)
		VALUES ('6ba7b810-9dad-41d1-80b4-00c04fd430c8', 'Open', 'Writer', 'active', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	// A reader on another connection sees the last committed state while the write is open.
	var count int
	require.NoError(t, sqlite.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM projects"))
	assert.Zero(t, count)

	require.NoError(t, tx.Commit())
	require.NoError(t, sqlite.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM projects"))
	assert.Equal(t, 1, count)
}

func TestNewSQLiteDB_MemoryKeepsOneConnection(t *testing.T) {
	sqlite, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(sqlite.Close)

	assert.Equal(t, 1, sqlite.DB.Stats().MaxOpenConnections)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"file:/tmp/p.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate",
		sqliteDSN("/tmp/p.db"))
}
