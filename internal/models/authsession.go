package models

import "time"

// AuthSessionState is the explicit lifecycle tag of a dashboard session row.
type AuthSessionState string

const (
	// SessionActive: row exists and expire is in the future.
	SessionActive AuthSessionState = "active"
	// SessionLoggedOut: soft-deleted; row kept for audit, payload blanked.
	SessionLoggedOut AuthSessionState = "logged_out"
)

// AuthSession is a dashboard login session keyed by an opaque sid.
// Expire is absolute epoch milliseconds. Destroy is a soft delete: the row
// survives with LogoutAt set until the background sweep hard-deletes it.
type AuthSession struct {
	SID       string
	Payload   []byte // opaque serialized session data
	Expire    int64  // epoch millis
	Username  string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
	LogoutAt  *time.Time
}

// State derives the lifecycle tag from the row.
func (s *AuthSession) State() AuthSessionState {
	if s.LogoutAt != nil {
		return SessionLoggedOut
	}
	return SessionActive
}
