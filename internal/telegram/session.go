package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/session"

	"tgrelay/internal/common"
)

// EncodeSession renders raw session state as the portable string form kept
// in the sessions table and the environment override.
func EncodeSession(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeSession is the inverse of EncodeSession.
func DecodeSession(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session string: %v", common.ErrValidation, err)
	}
	return data, nil
}

// blobStorage holds session state in memory only; the encoded form lives in
// the database, never on disk.
type blobStorage struct {
	mu   sync.Mutex
	data []byte
}

func newBlobStorage(data []byte) *blobStorage {
	return &blobStorage{data: bytes.Clone(data)}
}

func (b *blobStorage) LoadSession(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil, session.ErrNotFound
	}
	return bytes.Clone(b.data), nil
}

func (b *blobStorage) StoreSession(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = bytes.Clone(data)
	return nil
}

// Bytes returns a copy of the current session state, nil when empty.
func (b *blobStorage) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	return bytes.Clone(b.data)
}
