package files

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgrelay/internal/common"
	"tgrelay/internal/models"
)

// Driver-level failures are hard to provoke against a real database, so
// these paths are exercised with sqlmock.

func newMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestCreate_ExecError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("INSERT INTO files").WillReturnError(errors.New("disk I/O error"))

	_, err := r.Create(context.Background(), "a.txt", "/tmp/a.txt", "1", "")
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_QueryError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM files").WillReturnError(errors.New("database is locked"))

	_, err := r.GetAll(context.Background())
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_ScanError(t *testing.T) {
	r, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("not-a-number")
	mock.ExpectQuery("SELECT (.+) FROM files").WillReturnRows(rows)

	_, err := r.GetAll(context.Background())
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestUpdateStatus_ExecError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("UPDATE files").WillReturnError(errors.New("disk I/O error"))

	err := r.UpdateStatus(context.Background(), 1, models.StatusFailed, "")
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkLocalDeleted_ExecError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("UPDATE files").WillReturnError(errors.New("disk I/O error"))

	err := r.MarkLocalDeleted(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestDelete_ExecError(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec("DELETE FROM files").WillReturnError(errors.New("disk I/O error"))

	err := r.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrStorage)
}
