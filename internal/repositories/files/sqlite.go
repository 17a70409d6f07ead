package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tgrelay/internal/common"
	"tgrelay/internal/dbx"
	"tgrelay/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const fileColumns = `id, filename, filepath, status, COALESCE(hash, ''), chat_id, COALESCE(chat_name, ''), local_deleted, local_deleted_at, created_at, updated_at`

func (r *SQLiteRepository) Create(ctx context.Context, filename, filepath, chatID, chatName string) (*models.FileRecord, error) {

	query := `INSERT INTO files (filename, filepath, chat_id, chat_name, status, local_deleted, local_deleted_at)
			VALUES (?, ?, ?, NULLIF(?, ''), ?, 0, NULL)`

	res, err := r.db.ExecContext(ctx, query, filename, filepath, chatID, chatName, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: insert file record: %w", common.ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: last insert id: %w", common.ErrStorage, err)
	}

	return r.GetByID(ctx, id)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.FileRecord, error) {

	query := `SELECT ` + fileColumns + ` FROM files ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: select files: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []*models.FileRecord

	for rows.Next() {
		item, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate files: %w", common.ErrStorage, err)
	}

	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.FileRecord, error) {

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rec, err := scanFileRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	return rec, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id int64, status models.FileStatus, hash string) error {

	query := `UPDATE files
		SET status = ?, hash = COALESCE(NULLIF(?, ''), hash), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, status, hash, id); err != nil {
		return fmt.Errorf("%w: update file status: %w", common.ErrStorage, err)
	}

	return nil
}

func (r *SQLiteRepository) MarkLocalDeleted(ctx context.Context, id int64) error {

	// the local_deleted guard keeps the first deletion timestamp
	query := `UPDATE files
		SET local_deleted = 1,
		    local_deleted_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND local_deleted = 0`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: mark local deleted: %w", common.ErrStorage, err)
	}

	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {

	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete file record: %w", common.ErrStorage, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(s rowScanner) (*models.FileRecord, error) {
	rec, err := scanFileRow(s)
	if err != nil {
		return nil, fmt.Errorf("%w: scan file record: %w", common.ErrStorage, err)
	}
	return rec, nil
}

func scanFileRow(s rowScanner) (*models.FileRecord, error) {
	var (
		rec       models.FileRecord
		deleted   int
		deletedAt sql.NullTime
	)
	err := s.Scan(&rec.ID, &rec.Filename, &rec.Filepath, &rec.Status, &rec.Hash,
		&rec.ChatID, &rec.ChatName, &deleted, &deletedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.LocalDeleted = deleted != 0
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		rec.LocalDeletedAt = &t
	}
	return &rec, nil
}
