// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutUseCase owns the transaction lifecycle: creation with a fixed
// expiration horizon, cancellation, and batch expiry. Success is reached only
// through the activation engine, never here.
type CheckoutUseCase interface {
	Create(ctx context.Context, userID string, items []model.CartItem, voucherCode string, currency model.Currency) (*model.Transaction, error)
	Get(ctx context.Context, id string) (*model.Transaction, error)
	Cancel(ctx context.Context, id, reason string) error
	// ExpireDue moves created/pending transactions past their expiry to
	// expired, cascading to children and any pending payment. Returns the
	// number of transactions expired.
	ExpireDue(ctx context.Context) (int, error)
}

type checkoutUC struct {
	pricing      PricingUseCase
	vouchers     VoucherUseCase
	transactions repository.TransactionRepository
	payments     repository.PaymentRepository
	tm           repository.TransactionManager
	horizon      time.Duration // createdAt -> expiresAt
	expireBatch  int
	log          *zerolog.Logger
}

func NewCheckoutUseCase(
	pricing PricingUseCase,
	vouchers VoucherUseCase,
	transactions repository.TransactionRepository,
	payments repository.PaymentRepository,
	tm repository.TransactionManager,
	horizon time.Duration,
	logger *zerolog.Logger,
) *checkoutUC {
	if horizon <= 0 {
		horizon = 7 * 24 * time.Hour
	}
	l := logger.With().Str("component", "CheckoutUseCase").Logger()
	return &checkoutUC{
		pricing:      pricing,
		vouchers:     vouchers,
		transactions: transactions,
		payments:     payments,
		tm:           tm,
		horizon:      horizon,
		expireBatch:  200,
		log:          &l,
	}
}

func (u *checkoutUC) Create(ctx context.Context, userID string, items []model.CartItem, voucherCode string, currency model.Currency) (*model.Transaction, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	quote, err := u.pricing.Quote(ctx, items, currency)
	if err != nil {
		return nil, err
	}

	var check *model.VoucherCheck
	if voucherCode != "" {
		check, err = u.vouchers.Validate(ctx, voucherCode, quote, userID)
		if err != nil {
			return nil, err
		}
	}

	original := quote.Subtotal
	discount := decimal.Zero
	var voucherID *string
	if check != nil {
		discount = check.DiscountAmount
		voucherID = &check.Voucher.ID
	}
	final := original.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	now := time.Now()
	t := &model.Transaction{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Status:         model.TransactionStatusCreated,
		Currency:       currency,
		OriginalAmount: original,
		DiscountAmount: discount,
		FinalAmount:    final,
		VoucherID:      voucherID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(u.horizon),
	}
	if err := attachLines(t, quote); err != nil {
		return nil, err
	}
	t.Type = deriveType(t)

	// Parent and child rows must land atomically.
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return u.transactions.Save(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("transaction_id", t.ID).
		Str("user_id", userID).
		Str("type", string(t.Type)).
		Str("final_amount", t.FinalAmount.String()).
		Msg("transaction created")
	return t, nil
}

// attachLines snapshots priced lines into child rows. A transaction owns at
// most one whatsapp service child.
func attachLines(t *model.Transaction, quote *model.PricingResult) error {
	for _, line := range quote.Lines {
		switch line.Type {
		case model.ItemTypeProduct:
			t.Products = append(t.Products, model.ProductTransaction{
				ID:            ulid.Make().String(),
				TransactionID: t.ID,
				ProductID:     line.ItemID,
				Name:          line.Name,
				UnitPrice:     line.UnitPrice,
				Quantity:      line.Quantity,
				Status:        model.ChildStatusPending,
			})
		case model.ItemTypeAddon:
			t.Addons = append(t.Addons, model.AddonTransaction{
				ID:            ulid.Make().String(),
				TransactionID: t.ID,
				AddonID:       line.ItemID,
				Name:          line.Name,
				UnitPrice:     line.UnitPrice,
				Quantity:      line.Quantity,
				Status:        model.ChildStatusPending,
			})
		case model.ItemTypePackage:
			if t.WhatsappService != nil {
				return domain.ErrInvalidArgument
			}
			t.WhatsappService = &model.WhatsappServiceTransaction{
				ID:            ulid.Make().String(),
				TransactionID: t.ID,
				PackageID:     line.ItemID,
				Duration:      line.Duration,
				Amount:        line.LineTotal,
				Status:        model.ChildStatusPending,
			}
		}
	}
	return nil
}

func deriveType(t *model.Transaction) model.TransactionType {
	hasWA := t.WhatsappService != nil
	hasOther := len(t.Products) > 0 || len(t.Addons) > 0
	switch {
	case hasWA && hasOther:
		return model.TransactionTypeMixed
	case hasWA:
		return model.TransactionTypeWhatsapp
	default:
		return model.TransactionTypeProduct
	}
}

func (u *checkoutUC) Get(ctx context.Context, id string) (*model.Transaction, error) {
	return u.transactions.FindByID(ctx, nil, id)
}

func (u *checkoutUC) Cancel(ctx context.Context, id, reason string) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.transactions.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(model.TransactionStatusCancelled) {
			return domain.ErrInvalidStatusTransition
		}
		if err := u.transactions.UpdateStatus(ctx, tx, id, model.TransactionStatusCancelled); err != nil {
			return err
		}
		if err := u.transactions.CascadeChildren(ctx, tx, id, model.ChildStatusFailed); err != nil {
			return err
		}
		if err := u.cancelPayment(ctx, tx, id, reason); err != nil {
			return err
		}
		u.log.Info().Str("transaction_id", id).Str("reason", reason).Msg("transaction cancelled")
		return nil
	})
}

func (u *checkoutUC) cancelPayment(ctx context.Context, tx repository.Tx, transactionID, reason string) error {
	p, err := u.payments.FindByTransactionID(ctx, tx, transactionID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil
		}
		return err
	}
	if !p.Status.CanTransitionTo(model.PaymentStatusCancelled) {
		return nil
	}
	if err := u.payments.UpdateStatus(ctx, tx, p.ID, model.PaymentStatusCancelled); err != nil {
		return err
	}
	return u.payments.AppendHistory(ctx, tx, &model.PaymentStatusEntry{
		ID:        ulid.Make().String(),
		PaymentID: p.ID,
		Status:    model.PaymentStatusCancelled,
		Note:      reason,
		Actor:     "system",
		At:        time.Now(),
	})
}

func (u *checkoutUC) ExpireDue(ctx context.Context) (int, error) {
	count := 0
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		due, err := u.transactions.ListExpirable(ctx, tx, time.Now(), u.expireBatch)
		if err != nil {
			return err
		}
		for _, t := range due {
			if !t.Status.CanTransitionTo(model.TransactionStatusExpired) {
				continue
			}
			if err := u.transactions.UpdateStatus(ctx, tx, t.ID, model.TransactionStatusExpired); err != nil {
				return err
			}
			if err := u.transactions.CascadeChildren(ctx, tx, t.ID, model.ChildStatusExpired); err != nil {
				return err
			}
			if err := u.expirePayment(ctx, tx, t.ID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		u.log.Info().Int("count", count).Msg("transactions expired")
	}
	return count, nil
}

func (u *checkoutUC) expirePayment(ctx context.Context, tx repository.Tx, transactionID string) error {
	p, err := u.payments.FindByTransactionID(ctx, tx, transactionID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil
		}
		return err
	}
	if !p.Status.CanTransitionTo(model.PaymentStatusExpired) {
		return nil
	}
	if err := u.payments.UpdateStatus(ctx, tx, p.ID, model.PaymentStatusExpired); err != nil {
		return err
	}
	return u.payments.AppendHistory(ctx, tx, &model.PaymentStatusEntry{
		ID:        ulid.Make().String(),
		PaymentID: p.ID,
		Status:    model.PaymentStatusExpired,
		Note:      "transaction expired",
		Actor:     "system",
		At:        time.Now(),
	})
}
