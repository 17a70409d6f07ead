package authsessions

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgrelay/internal/logging"
)

type recordingStore struct {
	Store
	mu     sync.Mutex
	calls  int
	err    error
	pruned int64
}

func (r *recordingStore) Prune(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.pruned, r.err
}

func (r *recordingStore) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestPruner_SweepsOnTicks(t *testing.T) {
	store := &recordingStore{pruned: 1}
	p := NewPruner(store, testLogger(), 10*time.Millisecond)

	p.Start(context.Background())
	require.Eventually(t, func() bool { return store.callCount() >= 2 },
		time.Second, 5*time.Millisecond)
	p.Stop()
}

func TestPruner_SweepFailureDoesNotStopLoop(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	p := NewPruner(store, testLogger(), 10*time.Millisecond)

	p.Start(context.Background())
	require.Eventually(t, func() bool { return store.callCount() >= 3 },
		time.Second, 5*time.Millisecond)
	p.Stop()
}

func TestPruner_StopTerminates(t *testing.T) {
	store := &recordingStore{}
	p := NewPruner(store, testLogger(), time.Hour)

	p.Start(context.Background())

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	assert.Equal(t, 0, store.callCount(), "hour-long interval never ticked")
}
