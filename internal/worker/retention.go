package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
)

// RetentionSweeper runs the recording retention sweep on a cron schedule
type RetentionSweeper struct {
	recordings recording.Service
	schedule   string
	logger     *logger.Logger
	cron       *cron.Cron
}

// NewRetentionSweeper creates a retention sweeper worker
func NewRetentionSweeper(recordings recording.Service, schedule string, log *logger.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		recordings: recordings,
		schedule:   schedule,
		logger:     log,
	}
}

// Start schedules the sweep. Returns an error when the schedule is invalid.
func (w *RetentionSweeper) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.sweep(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.With("schedule", w.schedule).Info("Retention sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (w *RetentionSweeper) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("Retention sweeper stopped")
}

func (w *RetentionSweeper) sweep(ctx context.Context) {
	deleted, err := w.recordings.Sweep(ctx)
	if err != nil {
		w.logger.ErrorWithErr(err, "Retention sweep failed")
		return
	}
	w.logger.With("deleted", deleted).Info("Retention sweep finished")
}
