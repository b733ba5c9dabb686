// File: internal/usecase/activation_uc.go
package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// ActivationUseCase grants the purchased entitlement after payment success.
// It is the single writer of entitlement expiry. Safe to call repeatedly:
// an already-activated transaction is a no-op.
type ActivationUseCase interface {
	Activate(ctx context.Context, transactionID string) error
}

type activationUC struct {
	transactions repository.TransactionRepository
	entitlements repository.EntitlementRepository
	vouchers     repository.VoucherRepository
	tm           repository.TransactionManager
	log          *zerolog.Logger
}

func NewActivationUseCase(
	transactions repository.TransactionRepository,
	entitlements repository.EntitlementRepository,
	vouchers repository.VoucherRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *activationUC {
	l := logger.With().Str("component", "ActivationUseCase").Logger()
	return &activationUC{
		transactions: transactions,
		entitlements: entitlements,
		vouchers:     vouchers,
		tm:           tm,
		log:          &l,
	}
}

func lockKey(customerID, packageID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(customerID))
	h.Write([]byte{'|'})
	h.Write([]byte(packageID))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

// Activate runs the whole grant inside one database transaction. The
// check-then-act idempotency guard and the entitlement mutation sit behind a
// per-(customer, package) advisory xact lock so two concurrent confirmations
// cannot both observe pending and double-extend.
func (u *activationUC) Activate(ctx context.Context, transactionID string) error {
	var hadService bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.transactions.FindByID(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		hadService = t.WhatsappService != nil
		now := time.Now()

		switch t.Type {
		case model.TransactionTypeWhatsapp:
			return u.activateWhatsapp(ctx, tx, t, now)
		case model.TransactionTypeMixed:
			return u.activateMixed(ctx, tx, t, now)
		case model.TransactionTypeProduct:
			return u.activateProduct(ctx, tx, t, now)
		}
		return domain.ErrInvalidArgument
	})
	if err != nil && hadService {
		// The grant rolled back; leave a visible failed marker so the sweeper
		// re-selects this transaction. Best effort outside the dead tx.
		if markErr := u.transactions.UpdateServiceStatus(ctx, nil, transactionID, model.ChildStatusFailed, nil, nil); markErr != nil {
			u.log.Error().Err(markErr).Str("transaction_id", transactionID).Msg("failed to mark service transaction failed")
		}
	}
	return err
}

func (u *activationUC) activateWhatsapp(ctx context.Context, tx repository.Tx, t *model.Transaction, now time.Time) error {
	ws := t.WhatsappService
	if ws == nil {
		return domain.ErrInvalidArgument
	}
	// Idempotency guard: replayed confirmations must not extend twice.
	if ws.Status == model.ChildStatusSuccess {
		return nil
	}

	if err := u.lockEntitlement(ctx, tx, t.UserID, ws.PackageID); err != nil {
		return err
	}
	if _, err := u.extendOrStart(ctx, tx, t.UserID, ws, now); err != nil {
		return err
	}
	if err := u.finalize(ctx, tx, t, now); err != nil {
		return err
	}
	u.log.Info().
		Str("transaction_id", t.ID).
		Str("package_id", ws.PackageID).
		Msg("whatsapp service activated")
	return nil
}

func (u *activationUC) activateMixed(ctx context.Context, tx repository.Tx, t *model.Transaction, now time.Time) error {
	if t.WhatsappService != nil {
		if t.WhatsappService.Status != model.ChildStatusSuccess {
			if err := u.lockEntitlement(ctx, tx, t.UserID, t.WhatsappService.PackageID); err != nil {
				return err
			}
			if _, err := u.extendOrStart(ctx, tx, t.UserID, t.WhatsappService, now); err != nil {
				return err
			}
		}
	}
	// Generic products get a flat one-year window with no extension
	// semantics.
	if len(t.Products) > 0 {
		if err := u.transactions.UpdateProductDates(ctx, tx, t.ID, model.ChildStatusSuccess, now, now.AddDate(1, 0, 0)); err != nil {
			return err
		}
	}
	// Remaining pending children (addons) just complete.
	if err := u.transactions.CascadeChildren(ctx, tx, t.ID, model.ChildStatusSuccess); err != nil {
		return err
	}
	return u.finalize(ctx, tx, t, now)
}

func (u *activationUC) activateProduct(ctx context.Context, tx repository.Tx, t *model.Transaction, now time.Time) error {
	if len(t.Products) > 0 {
		if err := u.transactions.UpdateProductDates(ctx, tx, t.ID, model.ChildStatusSuccess, now, now.AddDate(1, 0, 0)); err != nil {
			return err
		}
	}
	if err := u.transactions.CascadeChildren(ctx, tx, t.ID, model.ChildStatusSuccess); err != nil {
		return err
	}
	return u.finalize(ctx, tx, t, now)
}

func (u *activationUC) lockEntitlement(ctx context.Context, tx repository.Tx, customerID, packageID string) error {
	pgtx, ok := tx.(pgx.Tx)
	if !ok {
		// In-memory path (unit tests): single caller, no lock needed.
		return nil
	}
	_, err := pgtx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(customerID, packageID))
	return err
}

// extendOrStart applies the extend-vs-fresh rule to the (customer, package)
// entitlement and stamps the service child. Returns the new expiry.
func (u *activationUC) extendOrStart(ctx context.Context, tx repository.Tx, customerID string, ws *model.WhatsappServiceTransaction, now time.Time) (time.Time, error) {
	existing, err := u.entitlements.FindByCustomerAndPackage(ctx, tx, customerID, ws.PackageID)
	if err != nil && err != domain.ErrNotFound {
		return time.Time{}, err
	}
	newExpiry := model.NextExpiry(existing, ws.Duration, now)

	ent := existing
	if ent == nil {
		ent = &model.Entitlement{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			PackageID:  ws.PackageID,
			CreatedAt:  now,
		}
	}
	ent.ExpiredAt = newExpiry
	ent.Status = model.EntitlementStatusActive
	ent.UpdatedAt = now
	if err := u.entitlements.Upsert(ctx, tx, ent); err != nil {
		return time.Time{}, err
	}
	if err := u.transactions.UpdateServiceStatus(ctx, tx, ws.TransactionID, model.ChildStatusSuccess, &now, &newExpiry); err != nil {
		return time.Time{}, err
	}
	return newExpiry, nil
}

// finalize advances the transaction to success and records the voucher usage
// exactly once. Pending transactions (sweeper recovery path) pass through
// in-progress first so every hop stays inside the transition table.
func (u *activationUC) finalize(ctx context.Context, tx repository.Tx, t *model.Transaction, now time.Time) error {
	status := t.Status
	if status == model.TransactionStatusPending {
		if err := u.transactions.UpdateStatus(ctx, tx, t.ID, model.TransactionStatusInProgress); err != nil {
			return err
		}
		status = model.TransactionStatusInProgress
	}
	switch status {
	case model.TransactionStatusSuccess:
		// already finalized
	case model.TransactionStatusInProgress:
		if err := u.transactions.UpdateStatus(ctx, tx, t.ID, model.TransactionStatusSuccess); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: cannot finalize from %s", domain.ErrInvalidStatusTransition, status)
	}

	if t.VoucherID == nil {
		return nil
	}
	recorded, err := u.vouchers.HasUsageByTransaction(ctx, tx, *t.VoucherID, t.ID)
	if err != nil {
		return err
	}
	if recorded {
		return nil
	}
	return u.vouchers.SaveUsage(ctx, tx, &model.VoucherUsage{
		ID:             uuid.NewString(),
		VoucherID:      *t.VoucherID,
		UserID:         t.UserID,
		TransactionID:  t.ID,
		DiscountAmount: t.DiscountAmount,
		UsedAt:         now,
	})
}
