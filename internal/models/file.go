// Package models holds the persisted record types shared by repositories
// and services.
package models

import "time"

// FileStatus is the lifecycle state of an upload attempt.
type FileStatus string

const (
	// StatusPending is the only state a record is created in.
	StatusPending FileStatus = "pending"
	// StatusUploaded means the relay to Telegram succeeded. Terminal.
	StatusUploaded FileStatus = "uploaded"
	// StatusFailed means the relay failed after the record existed. Terminal.
	StatusFailed FileStatus = "failed"
)

// FileRecord is one row per upload attempt. Filepath is retained for history
// even after the local copy is removed; LocalDeleted records that removal.
type FileRecord struct {
	ID             int64
	Filename       string
	Filepath       string
	Status         FileStatus
	Hash           string // hex sha256, empty until computed
	ChatID         string
	ChatName       string
	LocalDeleted   bool
	LocalDeletedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
