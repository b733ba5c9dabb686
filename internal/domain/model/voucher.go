package model

import (
	"time"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
)

// CalculationKind is how a voucher's value is interpreted.
type CalculationKind string

const (
	CalcPercentage  CalculationKind = "percentage"
	CalcFixedAmount CalculationKind = "fixed_amount"
)

// VoucherScope selects which part of an order a voucher discounts.
type VoucherScope string

const (
	ScopeTotal    VoucherScope = "total"
	ScopeProducts VoucherScope = "products"
	ScopeAddons   VoucherScope = "addons"
	ScopeWhatsapp VoucherScope = "whatsapp"
)

// Voucher is a discount code. The Kind and DiscountType columns are kept as
// stored: legacy rows exist with the two values swapped, so consumers must go
// through ResolveSemantics instead of reading either field directly.
type Voucher struct {
	ID                   string
	Code                 string
	Name                 string
	Description          string
	Kind                 string // stored "type" column: scope or calculation kind in legacy rows
	DiscountType         string // stored "discount_type" column: same caveat
	Value                decimal.Decimal
	MinAmount            *decimal.Decimal
	MaxDiscount          *decimal.Decimal
	MaxUses              *int
	AllowMultiplePerUser bool
	IsActive             bool
	StartDate            time.Time
	EndDate              *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func isCalculationKind(s string) bool {
	return s == string(CalcPercentage) || s == string(CalcFixedAmount)
}

func isScope(s string) bool {
	switch VoucherScope(s) {
	case ScopeTotal, ScopeProducts, ScopeAddons, ScopeWhatsapp:
		return true
	}
	return false
}

// ResolveSemantics normalizes the tolerated dual-field storage into an
// unambiguous (calculation kind, scope) pair. Whichever of the two columns
// holds a recognized calculation-kind token wins; the other provides the
// scope. Unrecognized kinds default to fixed_amount, unrecognized scopes to
// total.
func (v *Voucher) ResolveSemantics() (CalculationKind, VoucherScope) {
	kind := CalcFixedAmount
	scope := ScopeTotal

	switch {
	case isCalculationKind(v.DiscountType):
		kind = CalculationKind(v.DiscountType)
		if isScope(v.Kind) {
			scope = VoucherScope(v.Kind)
		}
	case isCalculationKind(v.Kind):
		kind = CalculationKind(v.Kind)
		if isScope(v.DiscountType) {
			scope = VoucherScope(v.DiscountType)
		}
	default:
		if isScope(v.Kind) {
			scope = VoucherScope(v.Kind)
		} else if isScope(v.DiscountType) {
			scope = VoucherScope(v.DiscountType)
		}
	}
	return kind, scope
}

// ItemType maps a subset scope to the child item type it discounts.
// Only meaningful for non-total scopes.
func (s VoucherScope) ItemType() ItemType {
	switch s {
	case ScopeProducts:
		return ItemTypeProduct
	case ScopeAddons:
		return ItemTypeAddon
	case ScopeWhatsapp:
		return ItemTypePackage
	}
	return ""
}

// Validate enforces creation-time invariants: positive value and, for
// percentage vouchers, value at most 100.
func (v *Voucher) Validate() error {
	if v.Code == "" || v.Name == "" {
		return domain.ErrInvalidArgument
	}
	if !v.Value.IsPositive() {
		return domain.ErrInvalidArgument
	}
	kind, _ := v.ResolveSemantics()
	if kind == CalcPercentage && v.Value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidArgument
	}
	if v.MinAmount != nil && v.MinAmount.IsNegative() {
		return domain.ErrInvalidArgument
	}
	if v.MaxDiscount != nil && !v.MaxDiscount.IsPositive() {
		return domain.ErrInvalidArgument
	}
	if v.MaxUses != nil && *v.MaxUses <= 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// VoucherCheck is the result of a successful validation: how much of the
// order the voucher applies to and the clamped discount.
type VoucherCheck struct {
	Voucher          *Voucher
	ApplicableAmount decimal.Decimal
	DiscountAmount   decimal.Decimal
}

// VoucherUsage records one completed redemption. Written exactly once per
// transaction, at the moment the transaction reaches success.
type VoucherUsage struct {
	ID             string
	VoucherID      string
	UserID         string
	TransactionID  string
	DiscountAmount decimal.Decimal
	UsedAt         time.Time
}
