//go:build !integration

package web

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain/model"
)

type stubPricingUC struct {
	QuoteFunc func(ctx context.Context, items []model.CartItem, currency model.Currency) (*model.PricingResult, error)
}

func (s *stubPricingUC) Quote(ctx context.Context, items []model.CartItem, currency model.Currency) (*model.PricingResult, error) {
	return s.QuoteFunc(ctx, items, currency)
}

type stubVoucherUC struct {
	ValidateFunc   func(ctx context.Context, code string, pricing *model.PricingResult, userID string) (*model.VoucherCheck, error)
	CreateFunc     func(ctx context.Context, v *model.Voucher) (*model.Voucher, error)
	UpdateFunc     func(ctx context.Context, v *model.Voucher) (*model.Voucher, error)
	ListFunc       func(ctx context.Context, activeOnly bool) ([]*model.Voucher, error)
	DeactivateFunc func(ctx context.Context, id string) error
}

func (s *stubVoucherUC) Validate(ctx context.Context, code string, pricing *model.PricingResult, userID string) (*model.VoucherCheck, error) {
	return s.ValidateFunc(ctx, code, pricing, userID)
}
func (s *stubVoucherUC) Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	return s.CreateFunc(ctx, v)
}
func (s *stubVoucherUC) Update(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	return s.UpdateFunc(ctx, v)
}
func (s *stubVoucherUC) List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error) {
	return s.ListFunc(ctx, activeOnly)
}
func (s *stubVoucherUC) Deactivate(ctx context.Context, id string) error {
	return s.DeactivateFunc(ctx, id)
}

type stubCheckoutUC struct {
	CreateFunc    func(ctx context.Context, userID string, items []model.CartItem, voucherCode string, currency model.Currency) (*model.Transaction, error)
	GetFunc       func(ctx context.Context, id string) (*model.Transaction, error)
	CancelFunc    func(ctx context.Context, id, reason string) error
	ExpireDueFunc func(ctx context.Context) (int, error)
}

func (s *stubCheckoutUC) Create(ctx context.Context, userID string, items []model.CartItem, voucherCode string, currency model.Currency) (*model.Transaction, error) {
	return s.CreateFunc(ctx, userID, items, voucherCode, currency)
}
func (s *stubCheckoutUC) Get(ctx context.Context, id string) (*model.Transaction, error) {
	return s.GetFunc(ctx, id)
}
func (s *stubCheckoutUC) Cancel(ctx context.Context, id, reason string) error {
	return s.CancelFunc(ctx, id, reason)
}
func (s *stubCheckoutUC) ExpireDue(ctx context.Context) (int, error) {
	return s.ExpireDueFunc(ctx)
}

type stubPaymentUC struct {
	CreateFunc       func(ctx context.Context, transactionID string, amount decimal.Decimal, method string) (*model.Payment, error)
	UpdateStatusFunc func(ctx context.Context, paymentID string, status model.PaymentStatus, note, actor string) (*model.Payment, error)
	GetFunc          func(ctx context.Context, id string) (*model.Payment, error)
}

func (s *stubPaymentUC) CreateWithExpiration(ctx context.Context, transactionID string, amount decimal.Decimal, method string) (*model.Payment, error) {
	return s.CreateFunc(ctx, transactionID, amount, method)
}
func (s *stubPaymentUC) UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus, note, actor string) (*model.Payment, error) {
	return s.UpdateStatusFunc(ctx, paymentID, status, note, actor)
}
func (s *stubPaymentUC) Get(ctx context.Context, id string) (*model.Payment, error) {
	return s.GetFunc(ctx, id)
}

type stubSweepUC struct {
	RunFunc func(ctx context.Context) (*model.SweepSummary, error)
}

func (s *stubSweepUC) Run(ctx context.Context) (*model.SweepSummary, error) {
	return s.RunFunc(ctx)
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}
