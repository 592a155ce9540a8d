// internal/app/system/workers/maintenance.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/scripthub/internal/app/store/oauthstate"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"go.uber.org/zap"
)

// Maintenance is a background worker that sweeps expired OAuth states and
// reconciles cached subscriber counters against subscription documents.
type Maintenance struct {
	states   *oauthstate.Store
	workshop *workshopstore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewMaintenance creates a new maintenance worker.
//
// Parameters:
//   - states: the OAuth state store
//   - workshop: the workshop store
//   - logger: zap logger for logging
//   - interval: how often to run maintenance (e.g., 1 hour)
func NewMaintenance(states *oauthstate.Store, workshop *workshopstore.Store, logger *zap.Logger, interval time.Duration) *Maintenance {
	return &Maintenance{
		states:   states,
		workshop: workshop,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background maintenance loop.
func (w *Maintenance) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("maintenance worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Maintenance) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("maintenance worker stopped")
}

func (w *Maintenance) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *Maintenance) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	removed, err := w.states.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to sweep expired oauth states", zap.Error(err))
	} else if removed > 0 {
		w.log.Info("swept expired oauth states", zap.Int64("count", removed))
	}

	fixed, err := w.workshop.ReconcileSubscriberCounts(ctx)
	if err != nil {
		w.log.Error("failed to reconcile subscriber counters", zap.Error(err))
		return
	}
	if fixed > 0 {
		w.log.Info("reconciled subscriber counters", zap.Int64("collections", fixed))
	}
}
