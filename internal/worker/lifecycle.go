package worker

import (
	"context"
	"time"

	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/services"
)

// LifecycleRunner periodically re-evaluates every user's subscription state so
// expiry and refill land even when a user never triggers a read themselves.
type LifecycleRunner struct {
	store    *services.SettingsStore
	interval time.Duration
	logger   *logger.Logger
}

// NewLifecycleRunner creates a lifecycle runner worker
func NewLifecycleRunner(store *services.SettingsStore, interval time.Duration, log *logger.Logger) *LifecycleRunner {
	return &LifecycleRunner{
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// Start begins the periodic lifecycle pass. Blocks until ctx is cancelled.
func (w *LifecycleRunner) Start(ctx context.Context) {
	w.logger.With("interval", w.interval.String()).Info("Lifecycle runner started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			w.logger.Info("Lifecycle runner stopped")
			return
		}
	}
}

func (w *LifecycleRunner) run(ctx context.Context) {
	if err := w.store.EvaluateAll(ctx); err != nil {
		w.logger.ErrorWithErr(err, "Lifecycle pass failed")
	}
}
