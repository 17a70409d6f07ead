package files

import (
	"context"

	"tgrelay/internal/models"
)

// Repository describes CRUD and lifecycle operations for FileRecord rows.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Create inserts a new record with status=pending and no local-deletion
	// marker. chatName may be empty.
	Create(ctx context.Context, filename, filepath, chatID, chatName string) (*models.FileRecord, error)

	// GetAll returns every record, newest-created first.
	GetAll(ctx context.Context) ([]*models.FileRecord, error)

	// GetByID returns the record or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.FileRecord, error)

	// UpdateStatus sets the lifecycle status. A non-empty hash overwrites the
	// stored hash; an empty hash preserves whatever is already recorded.
	// updated_at is always bumped. Unknown ids are a no-op.
	UpdateStatus(ctx context.Context, id int64, status models.FileStatus, hash string) error

	// MarkLocalDeleted records that the on-disk copy was removed. Idempotent:
	// a second call leaves local_deleted_at untouched.
	MarkLocalDeleted(ctx context.Context, id int64) error

	// Delete removes the row entirely. The caller handles the physical file
	// before calling this.
	Delete(ctx context.Context, id int64) error
}
