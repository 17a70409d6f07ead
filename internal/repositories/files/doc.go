// Package files provides the persistence layer for upload attempt records.
//
// # Overview
//
// The package defines a Repository interface for creating, listing, and
// reconciling the lifecycle of FileRecord rows (pending → uploaded/failed,
// content hash, local-copy deletion tracking). A SQLite-backed
// implementation (SQLiteRepository) persists data via a dbx.DBTX
// (*sql.DB or *sql.Tx).
//
// Key Types
//
//   - type Repository: contract used by the upload service
//   - type SQLiteRepository: SQLite implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := files.NewSQLiteRepository(db)
//	rec, _ := repo.Create(ctx, "report.pdf", "/data/uploads/x", "12345", "")
//	_ = repo.UpdateStatus(ctx, rec.ID, models.StatusUploaded, hash)
//	_ = repo.MarkLocalDeleted(ctx, rec.ID)
//
// See also: internal/models.FileRecord for field semantics.
package files
