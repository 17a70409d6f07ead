package models

import "time"

// TelegramSession is the single current string-session credential. Saving a
// new one supersedes all previous rows.
type TelegramSession struct {
	ID            int64
	StringSession string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
