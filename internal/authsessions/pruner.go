package authsessions

import (
	"context"
	"time"

	"tgrelay/internal/logging"
)

// DefaultPruneInterval is how often the background sweep runs.
const DefaultPruneInterval = time.Hour

// Pruner runs the session sweep on its own timer, independent of request
// handling. Sweep failures are logged and retried on the next tick.
type Pruner struct {
	store    Store
	logger   logging.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewPruner(store Store, logger logging.Logger, interval time.Duration) *Pruner {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	return &Pruner{
		store:    store,
		logger:   logger.With("component", "session-pruner"),
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Call Stop to terminate it.
func (p *Pruner) Start(ctx context.Context) {
	go p.loop(ctx)
}

// Stop terminates the loop and waits for it to exit.
func (p *Pruner) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Pruner) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep(ctx)
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pruner) sweep(ctx context.Context) {
	n, err := p.store.Prune(ctx)
	if err != nil {
		p.logger.Error(ctx, "session sweep failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.Info(ctx, "session sweep removed rows", "count", n)
	}
}
