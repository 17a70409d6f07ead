package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestOpen_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"files", "sessions", "chat_mappings", "auth_sessions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}

	var idx string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_auth_sessions_expire'`).Scan(&idx)
	require.NoError(t, err)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestEnsureColumn_AddsMissingColumnOnce(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE legacy (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	require.NoError(t, EnsureColumn(ctx, db, "legacy", "extra", "TEXT"))

	// already present: still success
	require.NoError(t, EnsureColumn(ctx, db, "legacy", "extra", "TEXT"))

	_, err = db.Exec(`INSERT INTO legacy (id, extra) VALUES (1, 'x')`)
	require.NoError(t, err)
}

func TestMigrate_UpgradesLegacyFilesTable(t *testing.T) {
	// a database created before local deletion tracking existed
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		hash TEXT,
		chat_id TEXT NOT NULL,
		chat_name TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO files (filename, filepath, chat_id) VALUES ('a.txt', '/tmp/a.txt', '1')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, db))

	var deleted int
	err = db.QueryRow(`SELECT local_deleted FROM files WHERE filename='a.txt'`).Scan(&deleted)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted, "existing rows keep their data and default to not-deleted")
}
