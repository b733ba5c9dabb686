package sched

import (
	"context"
	"time"

	"whatsapp-commerce-billing/internal/infra/metrics"
	"whatsapp-commerce-billing/internal/usecase"

	"github.com/rs/zerolog"
)

// SweepWorker periodically re-drives paid-but-unactivated transactions
// through the activation engine. This covers cases where the webhook path
// failed or the process crashed mid-activation.
type SweepWorker struct {
	interval time.Duration
	sweep    usecase.SweepUseCase
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, sweep usecase.SweepUseCase, logger *zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	sweepLog := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{interval: interval, sweep: sweep, log: &sweepLog}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting activation sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping activation sweep worker")
			return ctx.Err()
		case <-ticker.C:
			summary, err := w.sweep.Run(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("activation sweep error")
				continue
			}
			metrics.ObserveSweep(summary.Duration.Seconds(), summary.Activated, summary.Skipped, summary.Errors)
			if summary.Total > 0 {
				w.log.Info().
					Int("total", summary.Total).
					Int("activated", summary.Activated).
					Int("skipped", summary.Skipped).
					Int("errors", summary.Errors).
					Dur("duration", summary.Duration).
					Msg("activation sweep finished")
			}
		}
	}
}
