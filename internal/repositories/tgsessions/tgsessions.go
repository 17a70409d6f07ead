// Package tgsessions stores the single current Telegram string-session
// credential. The table is a single logical slot: saving a new credential
// supersedes every previous row.
package tgsessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tgrelay/internal/common"
	"tgrelay/internal/dbx"
	"tgrelay/internal/models"
)

// Store is the single-slot credential contract.
type Store interface {
	// Save atomically clears any prior credential and inserts blob as the
	// sole row. Last writer wins.
	Save(ctx context.Context, blob string) (*models.TelegramSession, error)

	// GetLatest returns the current credential, or "" when none is stored.
	GetLatest(ctx context.Context) (string, error)

	// Clear removes all credentials. Clearing an empty slot is success.
	Clear(ctx context.Context) error
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Save(ctx context.Context, blob string) (*models.TelegramSession, error) {

	var id int64

	// delete-then-insert must not interleave with a concurrent Save, or two
	// rows could survive
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO sessions (string_session) VALUES (?)`, blob)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: save telegram session: %w", common.ErrStorage, err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, string_session, created_at, updated_at FROM sessions WHERE id = ?`, id)

	var s models.TelegramSession
	if err := row.Scan(&s.ID, &s.StringSession, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: read back telegram session: %w", common.ErrStorage, err)
	}

	return &s, nil
}

func (r *SQLiteStore) GetLatest(ctx context.Context) (string, error) {

	var blob string
	err := r.db.QueryRowContext(ctx,
		`SELECT string_session FROM sessions ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: select telegram session: %w", common.ErrStorage, err)
	}

	return blob, nil
}

func (r *SQLiteStore) Clear(ctx context.Context) error {

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("%w: clear telegram sessions: %w", common.ErrStorage, err)
	}

	return nil
}
