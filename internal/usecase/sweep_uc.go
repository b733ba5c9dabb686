// File: internal/usecase/sweep_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ SweepUseCase = (*sweepUC)(nil)

// RunLocker serializes sweeper runs across processes. Best effort only:
// correctness comes from the activation engine's idempotency guard, the lock
// just keeps overlapping cron fires from duplicating work.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// SweepUseCase re-activates paid-but-unactivated whatsapp transactions that
// the synchronous path missed. At-least-once safe.
type SweepUseCase interface {
	Run(ctx context.Context) (*model.SweepSummary, error)
}

const sweepLockKey = "billing:sweep:activation"

type sweepUC struct {
	transactions repository.TransactionRepository
	activation   ActivationUseCase
	locker       RunLocker // nil disables the run lock
	batch        int
	log          *zerolog.Logger
}

func NewSweepUseCase(transactions repository.TransactionRepository, activation ActivationUseCase, locker RunLocker, batch int, logger *zerolog.Logger) *sweepUC {
	if batch <= 0 {
		batch = 500
	}
	l := logger.With().Str("component", "SweepUseCase").Logger()
	return &sweepUC{transactions: transactions, activation: activation, locker: locker, batch: batch, log: &l}
}

func (u *sweepUC) Run(ctx context.Context) (*model.SweepSummary, error) {
	start := time.Now()
	summary := &model.SweepSummary{}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, sweepLockKey, 2*time.Minute)
		if err != nil {
			if err == domain.ErrLockBusy {
				u.log.Info().Msg("sweep already running elsewhere, skipping")
				summary.Duration = time.Since(start)
				return summary, nil
			}
			return nil, err
		}
		defer func() {
			if uerr := u.locker.Unlock(ctx, sweepLockKey, token); uerr != nil {
				u.log.Warn().Err(uerr).Msg("sweep lock release failed")
			}
		}()
	}

	pending, err := u.transactions.ListPaidUnactivated(ctx, nil, u.batch)
	if err != nil {
		return nil, err
	}

	for _, t := range pending {
		if ctx.Err() != nil {
			break
		}
		ws := t.WhatsappService
		if ws == nil {
			summary.Record(t.ID, model.SweepSkipped, "no whatsapp service child")
			continue
		}
		newer, err := u.transactions.HasNewerPaid(ctx, nil, t.UserID, ws.PackageID, t.CreatedAt)
		if err != nil {
			summary.Record(t.ID, model.SweepErrored, err.Error())
			continue
		}
		if newer {
			// A later paid renewal for the same (user, package) wins;
			// activating this one too would double-extend.
			summary.Record(t.ID, model.SweepSkipped, "superseded by newer paid transaction")
			continue
		}
		if err := u.activation.Activate(ctx, t.ID); err != nil {
			summary.Record(t.ID, model.SweepErrored, err.Error())
			continue
		}
		summary.Record(t.ID, model.SweepActivated, "")
	}

	summary.Duration = time.Since(start)
	u.log.Info().
		Int("total", summary.Total).
		Int("activated", summary.Activated).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Dur("duration", summary.Duration).
		Msg("activation sweep finished")
	return summary, nil
}
