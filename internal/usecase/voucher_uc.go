// File: internal/usecase/voucher_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ VoucherUseCase = (*voucherUC)(nil)

// VoucherUseCase validates voucher codes against a priced order and manages
// the voucher catalog. Validate never records a usage: that happens in the
// activation engine when the transaction reaches success.
type VoucherUseCase interface {
	// Validate runs the ordered eligibility checks and computes the clamped
	// discount. userID may be empty (anonymous check mode), in which case the
	// per-user single-use check is skipped entirely.
	Validate(ctx context.Context, code string, pricing *model.PricingResult, userID string) (*model.VoucherCheck, error)

	Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error)
	Update(ctx context.Context, v *model.Voucher) (*model.Voucher, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error)
	Deactivate(ctx context.Context, id string) error
}

type voucherUC struct {
	vouchers repository.VoucherRepository
	log      *zerolog.Logger
}

func NewVoucherUseCase(vouchers repository.VoucherRepository, logger *zerolog.Logger) *voucherUC {
	l := logger.With().Str("component", "VoucherUseCase").Logger()
	return &voucherUC{vouchers: vouchers, log: &l}
}

func (u *voucherUC) Validate(ctx context.Context, code string, pricing *model.PricingResult, userID string) (*model.VoucherCheck, error) {
	if code == "" || pricing == nil {
		return nil, domain.ErrInvalidArgument
	}

	v, err := u.vouchers.FindByCode(ctx, nil, code)
	if err != nil {
		return nil, domain.ErrVoucherNotFound
	}

	now := time.Now()
	if !v.IsActive {
		return nil, domain.ErrVoucherInactive
	}
	if now.Before(v.StartDate) {
		return nil, domain.ErrVoucherNotYetValid
	}
	if v.EndDate != nil && now.After(*v.EndDate) {
		return nil, domain.ErrVoucherExpired
	}
	if v.MaxUses != nil {
		used, err := u.vouchers.CountUsage(ctx, nil, v.ID)
		if err != nil {
			return nil, err
		}
		if used >= *v.MaxUses {
			return nil, domain.ErrUsageLimitReached
		}
	}
	if userID != "" && !v.AllowMultiplePerUser {
		used, err := u.vouchers.HasUsageByUser(ctx, nil, v.ID, userID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrVoucherAlreadyUsed
		}
	}
	if v.MinAmount != nil && pricing.Subtotal.LessThan(*v.MinAmount) {
		return nil, domain.ErrBelowMinimum
	}

	applicable, discount := computeDiscount(v, pricing)
	return &model.VoucherCheck{Voucher: v, ApplicableAmount: applicable, DiscountAmount: discount}, nil
}

// computeDiscount resolves the voucher's semantics, selects the applicable
// amount for its scope, and clamps the raw discount so it never goes negative
// and never exceeds the applicable amount or the voucher's cap.
func computeDiscount(v *model.Voucher, pricing *model.PricingResult) (applicable, discount decimal.Decimal) {
	kind, scope := v.ResolveSemantics()

	if scope == model.ScopeTotal {
		applicable = pricing.Subtotal
	} else {
		applicable = pricing.SubtotalFor(scope.ItemType())
	}

	switch kind {
	case model.CalcPercentage:
		discount = applicable.Mul(v.Value).Div(decimal.NewFromInt(100))
	default: // fixed_amount
		discount = decimal.Min(v.Value, applicable)
	}

	if v.MaxDiscount != nil {
		discount = decimal.Min(discount, *v.MaxDiscount)
	}
	discount = decimal.Min(discount, applicable)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return applicable, discount.Round(2)
}

func (u *voucherUC) Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if existing, err := u.vouchers.FindByCode(ctx, nil, v.Code); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	now := time.Now()
	v.ID = uuid.NewString()
	if v.StartDate.IsZero() {
		v.StartDate = now
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := u.vouchers.Save(ctx, nil, v); err != nil {
		return nil, err
	}
	u.log.Info().Str("voucher_id", v.ID).Str("code", v.Code).Msg("voucher created")
	return v, nil
}

func (u *voucherUC) Update(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	if v.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if _, err := u.vouchers.FindByID(ctx, nil, v.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	v.UpdatedAt = time.Now()
	if err := u.vouchers.Save(ctx, nil, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (u *voucherUC) List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error) {
	return u.vouchers.List(ctx, activeOnly)
}

func (u *voucherUC) Deactivate(ctx context.Context, id string) error {
	v, err := u.vouchers.FindByID(ctx, nil, id)
	if err != nil {
		return domain.ErrNotFound
	}
	if !v.IsActive {
		return nil
	}
	v.IsActive = false
	v.UpdatedAt = time.Now()
	return u.vouchers.Save(ctx, nil, v)
}
