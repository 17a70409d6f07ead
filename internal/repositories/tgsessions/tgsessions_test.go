package tgsessions

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:tgsessions_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  string_session TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM sessions`)
	require.NoError(t, err)
	return db
}

func TestSave_SecondSaveSupersedesFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)
	ctx := context.Background()

	_, err := r.Save(ctx, "blob-one")
	require.NoError(t, err)

	s, err := r.Save(ctx, "blob-two")
	require.NoError(t, err)
	assert.Equal(t, "blob-two", s.StringSession)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	assert.Equal(t, 1, n, "exactly one row after two saves")

	latest, err := r.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "blob-two", latest)
}

func TestGetLatest_EmptySlot(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)

	latest, err := r.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestClear_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)
	ctx := context.Background()

	_, err := r.Save(ctx, "blob")
	require.NoError(t, err)

	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx), "clearing an empty slot is success")

	latest, err := r.GetLatest(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestSave_ConcurrentWritersLeaveOneRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = r.Save(ctx, "blob")
		}(i)
	}
	wg.Wait()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	assert.Equal(t, 1, n)
}
