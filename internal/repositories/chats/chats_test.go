package chats

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgrelay/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE chat_mappings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  chat_id TEXT UNIQUE NOT NULL,
  chat_name TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)
	return db
}

func TestSetChatName_UpsertKeepsSingleRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteDirectory(db)
	ctx := context.Background()

	first, err := r.SetChatName(ctx, "12345", "ops")
	require.NoError(t, err)
	assert.Equal(t, "ops", first.ChatName)

	second, err := r.SetChatName(ctx, "12345", "operations")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must reuse the row")
	assert.Equal(t, "operations", second.ChatName)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM chat_mappings WHERE chat_id='12345'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGetChatName_AbsentIsEmptyNotError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteDirectory(db)

	name, err := r.GetChatName(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestGetAll_NewestFirst(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO chat_mappings(chat_id, chat_name, created_at) VALUES
	  ('1', 'old', '2024-01-01 00:00:00'),
	  ('2', 'new', '2024-06-01 00:00:00')`)
	require.NoError(t, err)

	r := NewSQLiteDirectory(db)
	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ChatName)
	assert.Equal(t, "old", got[1].ChatName)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteDirectory(db)
	ctx := context.Background()

	m, err := r.SetChatName(ctx, "1", "x")
	require.NoError(t, err)

	require.NoError(t, r.DeleteByID(ctx, m.ID))

	err = r.DeleteByID(ctx, m.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
