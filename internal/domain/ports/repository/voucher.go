package repository

import (
	"context"

	"whatsapp-commerce-billing/internal/domain/model"
)

// VoucherRepository persists vouchers and their usage trail.
type VoucherRepository interface {
	Save(ctx context.Context, tx Tx, v *model.Voucher) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Voucher, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Voucher, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error)

	// CountUsage returns the total recorded redemptions of a voucher.
	CountUsage(ctx context.Context, tx Tx, voucherID string) (int, error)
	// HasUsageByUser reports whether the user has redeemed the voucher before.
	HasUsageByUser(ctx context.Context, tx Tx, voucherID, userID string) (bool, error)
	// HasUsageByTransaction guards the once-per-transaction usage write.
	HasUsageByTransaction(ctx context.Context, tx Tx, voucherID, transactionID string) (bool, error)
	SaveUsage(ctx context.Context, tx Tx, u *model.VoucherUsage) error
}
