package models

import "time"

// ChatMapping pairs an opaque Telegram chat id with a human label.
// chat_id is a natural unique key; writes are upserts.
type ChatMapping struct {
	ID        int64
	ChatID    string
	ChatName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
