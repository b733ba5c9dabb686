// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/adapter"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase owns the payment record tied 1:1 to a transaction and its
// status transitions. A transition to paid triggers activation synchronously;
// when activation fails the payment stays paid and the error surfaces as
// domain.ErrActivationFailure so the sweeper can recover later.
type PaymentUseCase interface {
	CreateWithExpiration(ctx context.Context, transactionID string, amount decimal.Decimal, method string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus, note, actor string) (*model.Payment, error)
	Get(ctx context.Context, id string) (*model.Payment, error)
}

type paymentUC struct {
	payments     repository.PaymentRepository
	transactions repository.TransactionRepository
	activation   ActivationUseCase
	gateway      adapter.PaymentGateway
	tm           repository.TransactionManager
	feeIDR       decimal.Decimal
	feeUSD       decimal.Decimal
	log          *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	transactions repository.TransactionRepository,
	activation ActivationUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	feeIDR, feeUSD decimal.Decimal,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUseCase").Logger()
	return &paymentUC{
		payments:     payments,
		transactions: transactions,
		activation:   activation,
		gateway:      gateway,
		tm:           tm,
		feeIDR:       feeIDR,
		feeUSD:       feeUSD,
		log:          &l,
	}
}

func (u *paymentUC) serviceFee(cur model.Currency) decimal.Decimal {
	if cur == model.CurrencyUSD {
		return u.feeUSD
	}
	return u.feeIDR
}

func (u *paymentUC) CreateWithExpiration(ctx context.Context, transactionID string, amount decimal.Decimal, method string) (*model.Payment, error) {
	if transactionID == "" || method == "" {
		return nil, domain.ErrInvalidArgument
	}

	var p *model.Payment
	var currency model.Currency
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.transactions.FindByID(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if t.Status != model.TransactionStatusCreated && t.Status != model.TransactionStatusPending {
			return domain.ErrTransactionNotPayable
		}
		if amount.Sub(t.FinalAmount).Abs().GreaterThan(model.AmountTolerance) {
			u.log.Warn().
				Str("transaction_id", transactionID).
				Str("expected", t.FinalAmount.String()).
				Str("received", amount.String()).
				Msg("payment amount mismatch")
			return domain.ErrAmountMismatch
		}
		if existing, err := u.payments.FindByTransactionID(ctx, tx, transactionID); err == nil {
			if existing.Status == model.PaymentStatusPending || existing.Status == model.PaymentStatusPaid {
				return domain.ErrPaymentExists
			}
		} else if err != domain.ErrNotFound {
			return err
		}

		now := time.Now()
		currency = t.Currency
		p = &model.Payment{
			ID:            ulid.Make().String(),
			TransactionID: transactionID,
			Amount:        t.FinalAmount,
			ServiceFee:    u.serviceFee(t.Currency),
			Method:        method,
			Status:        model.PaymentStatusPending,
			ExpiresAt:     t.ExpiresAt, // payment cannot outlive its transaction
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := u.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		if err := u.payments.AppendHistory(ctx, tx, &model.PaymentStatusEntry{
			ID:        ulid.Make().String(),
			PaymentID: p.ID,
			Status:    model.PaymentStatusPending,
			Note:      "payment created",
			Actor:     "system",
			At:        now,
		}); err != nil {
			return err
		}
		if t.Status == model.TransactionStatusCreated {
			return u.transactions.UpdateStatus(ctx, tx, t.ID, model.TransactionStatusPending)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Register the charge with the provider only after the record committed;
	// a provider failure fails the payment but keeps the transaction payable.
	if _, err := u.gateway.CreateCharge(ctx, p.ID, p.Total(), currency, method); err != nil {
		u.log.Error().Err(err).Str("payment_id", p.ID).Msg("gateway charge failed")
		if _, ferr := u.UpdateStatus(ctx, p.ID, model.PaymentStatusFailed, "gateway charge failed", "system"); ferr != nil {
			u.log.Error().Err(ferr).Str("payment_id", p.ID).Msg("failed to fail payment after gateway error")
		}
		return nil, err
	}
	return p, nil
}

func (u *paymentUC) UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus, note, actor string) (*model.Payment, error) {
	if actor == "" {
		actor = "system"
	}

	var p *model.Payment
	activate := false
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		p, err = u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == status {
			// Redelivered confirmation: already applied, nothing to do.
			return nil
		}
		if !p.Status.CanTransitionTo(status) {
			u.log.Error().
				Str("payment_id", paymentID).
				Str("from", string(p.Status)).
				Str("to", string(status)).
				Msg("illegal payment status transition")
			return domain.ErrInvalidStatusTransition
		}
		if err := u.payments.UpdateStatus(ctx, tx, paymentID, status); err != nil {
			return err
		}
		if err := u.payments.AppendHistory(ctx, tx, &model.PaymentStatusEntry{
			ID:        ulid.Make().String(),
			PaymentID: paymentID,
			Status:    status,
			Note:      note,
			Actor:     actor,
			At:        time.Now(),
		}); err != nil {
			return err
		}
		p.Status = status

		if status == model.PaymentStatusPaid {
			t, err := u.transactions.FindByID(ctx, tx, p.TransactionID)
			if err != nil {
				return err
			}
			if t.Status == model.TransactionStatusPending {
				if err := u.transactions.UpdateStatus(ctx, tx, t.ID, model.TransactionStatusInProgress); err != nil {
					return err
				}
			}
			activate = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if activate {
		// Synchronous grant. Failure must not silently leave a paid payment
		// with an unactivated entitlement: the service child is marked failed
		// inside Activate and the sweeper retries it.
		if err := u.activation.Activate(ctx, p.TransactionID); err != nil {
			u.log.Error().Err(err).
				Str("payment_id", paymentID).
				Str("transaction_id", p.TransactionID).
				Msg("activation failed after payment success")
			return p, fmt.Errorf("%w: %v", domain.ErrActivationFailure, err)
		}
	}
	return p, nil
}

func (u *paymentUC) Get(ctx context.Context, id string) (*model.Payment, error) {
	return u.payments.FindByID(ctx, nil, id)
}
