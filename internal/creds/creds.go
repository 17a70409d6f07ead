// Package creds holds the process-wide Telegram credential override.
//
// The cell is a single slot: an optional string session plus the API id and
// hash it was issued under. When populated it takes precedence over the
// persisted session store, which lets an operator pin credentials through
// the environment without touching the database.
package creds

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"tgrelay/internal/common"
)

// Set is the credential triple stored in the cell.
type Set struct {
	Session string
	APIID   int
	APIHash string
}

// Cell is a mutex-guarded single-slot credential holder.
type Cell struct {
	mu  sync.RWMutex
	val Set
	ok  bool
}

func NewCell() *Cell {
	return &Cell{}
}

// FromEnv builds a cell seeded from the environment. The session variable is
// ignored when unset or still carrying the setup placeholder, so a templated
// env file does not masquerade as a real login.
func FromEnv() *Cell {
	c := NewCell()

	session := strings.TrimSpace(os.Getenv("TELEGRAM_STRING_SESSION"))
	if session == common.EnvSessionPlaceholder {
		session = ""
	}

	apiID, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("TELEGRAM_API_ID")))
	apiHash := strings.TrimSpace(os.Getenv("TELEGRAM_API_HASH"))

	if session != "" || apiID != 0 || apiHash != "" {
		c.Store(Set{Session: session, APIID: apiID, APIHash: apiHash})
	}
	return c
}

// Store replaces the cell contents.
func (c *Cell) Store(v Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
	c.ok = true
}

// Load returns the current triple and whether the cell has ever been set.
func (c *Cell) Load() (Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val, c.ok
}

// Session returns the override string session, or "" when none is held.
func (c *Cell) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val.Session
}

// API returns the api id/hash pair, or common.ErrAPICredsNotConfigured when
// either half is missing.
func (c *Cell) API() (int, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.val.APIID == 0 || c.val.APIHash == "" {
		return 0, "", common.ErrAPICredsNotConfigured
	}
	return c.val.APIID, c.val.APIHash, nil
}

// Clear empties the slot.
func (c *Cell) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = Set{}
	c.ok = false
}
