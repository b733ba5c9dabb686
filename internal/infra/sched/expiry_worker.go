package sched

import (
	"context"
	"time"

	"whatsapp-commerce-billing/internal/infra/metrics"
	"whatsapp-commerce-billing/internal/usecase"

	"github.com/rs/zerolog"
)

// ExpiryWorker periodically expires overdue transactions via the use case.
type ExpiryWorker struct {
	interval time.Duration
	checkout usecase.CheckoutUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, checkout usecase.CheckoutUseCase, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		checkout: checkout,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.checkout.ExpireDue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
			}
			if n > 0 {
				metrics.IncTransactionsExpired(n)
				w.log.Info().Int("count", n).Msg("overdue transactions expired")
			}
		}
	}
}
