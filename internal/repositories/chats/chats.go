// Package chats maps opaque Telegram chat ids to human display names.
// chat_id is a natural unique key: writes are upserts and the table never
// holds two rows for the same chat.
package chats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tgrelay/internal/common"
	"tgrelay/internal/dbx"
	"tgrelay/internal/models"
)

// Directory is the chat-name lookup contract used by the upload service and
// the HTTP layer.
type Directory interface {
	SetChatName(ctx context.Context, chatID, chatName string) (*models.ChatMapping, error)
	GetChatName(ctx context.Context, chatID string) (string, error)
	GetAll(ctx context.Context) ([]*models.ChatMapping, error)
	DeleteByID(ctx context.Context, id int64) error
}

type SQLiteDirectory struct {
	db dbx.DBTX
}

func NewSQLiteDirectory(db dbx.DBTX) *SQLiteDirectory {
	return &SQLiteDirectory{db: db}
}

func (r *SQLiteDirectory) SetChatName(ctx context.Context, chatID, chatName string) (*models.ChatMapping, error) {

	query := `INSERT INTO chat_mappings (chat_id, chat_name)
			VALUES (?, ?)
			ON CONFLICT(chat_id) DO UPDATE SET
				chat_name = excluded.chat_name,
				updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, chatID, chatName); err != nil {
		return nil, fmt.Errorf("%w: upsert chat mapping: %w", common.ErrStorage, err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, COALESCE(chat_name, ''), created_at, updated_at FROM chat_mappings WHERE chat_id = ?`, chatID)

	var m models.ChatMapping
	if err := row.Scan(&m.ID, &m.ChatID, &m.ChatName, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: read back chat mapping: %w", common.ErrStorage, err)
	}

	return &m, nil
}

// GetChatName returns the stored display name, or "" when the chat has no
// mapping. Absence is not an error.
func (r *SQLiteDirectory) GetChatName(ctx context.Context, chatID string) (string, error) {

	var name sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT chat_name FROM chat_mappings WHERE chat_id = ?`, chatID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: select chat name: %w", common.ErrStorage, err)
	}

	return name.String, nil
}

func (r *SQLiteDirectory) GetAll(ctx context.Context) ([]*models.ChatMapping, error) {

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, COALESCE(chat_name, ''), created_at, updated_at FROM chat_mappings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: select chat mappings: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []*models.ChatMapping

	for rows.Next() {
		var m models.ChatMapping
		if err := rows.Scan(&m.ID, &m.ChatID, &m.ChatName, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan chat mapping: %w", common.ErrStorage, err)
		}
		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chat mappings: %w", common.ErrStorage, err)
	}

	return result, nil
}

func (r *SQLiteDirectory) DeleteByID(ctx context.Context, id int64) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_mappings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete chat mapping: %w", common.ErrStorage, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", common.ErrStorage, err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
