package state

import (
	"context"
	"time"

	"github.com/panelkit/authfront/internal/log"
)

// Sweeper periodically drops expired state records.
type Sweeper struct {
	store    *Store
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the sweep loop in a goroutine.
func (sw *Sweeper) Start(ctx context.Context) {
	log.LogInfoWithFields("state", "Starting state sweeper", map[string]any{
		"interval": sw.interval.String(),
	})

	go sw.run(ctx)
}

// Stop gracefully stops the sweep loop.
func (sw *Sweeper) Stop() {
	close(sw.stopChan)
	<-sw.doneChan
	log.LogInfoWithFields("state", "State sweeper stopped", nil)
}

func (sw *Sweeper) run(ctx context.Context) {
	defer close(sw.doneChan)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if count := sw.store.Sweep(); count > 0 {
				log.LogDebugWithFields("state", "Swept expired state records", map[string]any{
					"count": count,
				})
			}
		case <-sw.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
