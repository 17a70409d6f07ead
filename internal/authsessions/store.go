// Package authsessions is the persistent store backing dashboard login
// sessions.
//
// # Overview
//
// Sessions are keyed by an opaque sid and carry an absolute expiry in epoch
// milliseconds plus audit fields. Destroy is a soft delete: the row is kept
// with logout_at set, the payload blanked, and the expiry forced to "now",
// so an audit trail survives logout. A background Pruner later hard-deletes
// rows that are both expired and logged out, or that are expired past a
// long retention horizon regardless of the logout flag.
//
// A read for a sid whose expiry has passed reports "no session" whether or
// not the row still physically exists.
package authsessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tgrelay/internal/common"
	"tgrelay/internal/dbx"
	"tgrelay/internal/models"
)

const (
	// DefaultTTL bounds a session when the payload carries no expiry.
	DefaultTTL = 24 * time.Hour
	// DefaultRetention is how long expired-but-never-logged-out rows are
	// kept before the sweep removes them anyway.
	DefaultRetention = 30 * 24 * time.Hour
)

// Audit carries the optional request attributes stored alongside a session.
type Audit struct {
	Username  string
	IPAddress string
	UserAgent string
}

// Store is the session persistence contract consumed by the HTTP layer.
type Store interface {
	// Get returns the payload for sid when the session is alive, or
	// common.ErrNotFound when absent, expired, or logged out.
	Get(ctx context.Context, sid string) ([]byte, error)

	// Set upserts the session, overwriting payload, expiry, and audit
	// fields, and clears any prior logout marker.
	Set(ctx context.Context, sid string, payload []byte, audit Audit) error

	// Touch extends the expiry without changing the payload.
	Touch(ctx context.Context, sid string, payload []byte) error

	// Destroy soft-deletes the session: logout_at set, payload blanked,
	// expiry forced to now. Destroying an unknown sid is success.
	Destroy(ctx context.Context, sid string) error

	// GetRow returns the raw session row regardless of expiry, for the
	// session audit endpoint, or common.ErrNotFound when absent.
	GetRow(ctx context.Context, sid string) (*models.AuthSession, error)

	// Prune hard-deletes rows that are (expired AND logged out) or expired
	// past the retention horizon. Returns the number of rows removed.
	Prune(ctx context.Context) (int64, error)
}

type SQLiteStore struct {
	db        dbx.DBTX
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// Option tweaks a SQLiteStore.
type Option func(*SQLiteStore)

// WithTTL overrides the default session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *SQLiteStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRetention overrides the hard-delete retention horizon.
func WithRetention(r time.Duration) Option {
	return func(s *SQLiteStore) {
		if r > 0 {
			s.retention = r
		}
	}
}

// withClock is used by tests to control time.
func withClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

func NewSQLiteStore(db dbx.DBTX, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		db:        db,
		ttl:       DefaultTTL,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SQLiteStore) Get(ctx context.Context, sid string) ([]byte, error) {

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT sess FROM auth_sessions WHERE sid = ? AND expire > ? LIMIT 1`,
		sid, s.now().UnixMilli()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select auth session: %w", common.ErrStorage, err)
	}

	if payload == "" || payload == "{}" {
		return nil, common.ErrNotFound
	}

	return []byte(payload), nil
}

func (s *SQLiteStore) Set(ctx context.Context, sid string, payload []byte, audit Audit) error {

	expire := s.expiration(payload)

	query := `INSERT INTO auth_sessions (sid, sess, expire, username, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(sid)
		DO UPDATE SET
			sess = excluded.sess,
			expire = excluded.expire,
			username = excluded.username,
			ip_address = excluded.ip_address,
			user_agent = excluded.user_agent,
			updated_at = CURRENT_TIMESTAMP,
			logout_at = NULL`

	_, err := s.db.ExecContext(ctx, query,
		sid, string(payload), expire, audit.Username, audit.IPAddress, audit.UserAgent)
	if err != nil {
		return fmt.Errorf("%w: upsert auth session: %w", common.ErrStorage, err)
	}

	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, sid string, payload []byte) error {

	expire := s.expiration(payload)

	query := `UPDATE auth_sessions
		SET expire = ?, updated_at = CURRENT_TIMESTAMP
		WHERE sid = ?`

	if _, err := s.db.ExecContext(ctx, query, expire, sid); err != nil {
		return fmt.Errorf("%w: touch auth session: %w", common.ErrStorage, err)
	}

	return nil
}

func (s *SQLiteStore) Destroy(ctx context.Context, sid string) error {

	query := `UPDATE auth_sessions
		SET logout_at = CURRENT_TIMESTAMP,
		    expire = ?,
		    sess = '{}',
		    updated_at = CURRENT_TIMESTAMP
		WHERE sid = ?`

	if _, err := s.db.ExecContext(ctx, query, s.now().UnixMilli(), sid); err != nil {
		return fmt.Errorf("%w: destroy auth session: %w", common.ErrStorage, err)
	}

	return nil
}

func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {

	now := s.now()
	threshold := now.Add(-s.retention).UnixMilli()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE (expire <= ? AND logout_at IS NOT NULL) OR expire <= ?`,
		now.UnixMilli(), threshold)
	if err != nil {
		return 0, fmt.Errorf("%w: prune auth sessions: %w", common.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", common.ErrStorage, err)
	}

	return n, nil
}

// GetRow returns the raw session row regardless of expiry, for the admin
// audit view.
func (s *SQLiteStore) GetRow(ctx context.Context, sid string) (*models.AuthSession, error) {

	row := s.db.QueryRowContext(ctx,
		`SELECT sid, sess, expire, COALESCE(username, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at, updated_at, logout_at
		 FROM auth_sessions WHERE sid = ?`, sid)

	var (
		rec      models.AuthSession
		payload  string
		logoutAt sql.NullTime
	)
	err := row.Scan(&rec.SID, &payload, &rec.Expire, &rec.Username, &rec.IPAddress,
		&rec.UserAgent, &rec.CreatedAt, &rec.UpdatedAt, &logoutAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select auth session row: %w", common.ErrStorage, err)
	}

	rec.Payload = []byte(payload)
	if logoutAt.Valid {
		t := logoutAt.Time.UTC()
		rec.LogoutAt = &t
	}

	return &rec, nil
}

// expiration resolves a session expiry: an expires_at embedded in the
// payload as epoch milliseconds wins when valid, otherwise now + TTL.
func (s *SQLiteStore) expiration(payload []byte) int64 {
	var embedded struct {
		ExpiresAt int64 `json:"expires_at"`
	}
	if err := json.Unmarshal(payload, &embedded); err == nil && embedded.ExpiresAt > 0 {
		return embedded.ExpiresAt
	}
	return s.now().Add(s.ttl).UnixMilli()
}
