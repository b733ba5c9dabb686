//go:build !integration

package usecase

import (
	"context"
	"testing"
	"time"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
)

type checkoutFixture struct {
	uc           *checkoutUC
	transactions *memTransactionRepo
	payments     *memPaymentRepo
	vouchers     *memVoucherRepo
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	transactions := newMemTransactionRepo()
	payments := newMemPaymentRepo()
	vouchers := newMemVoucherRepo()
	pricing := NewPricingUseCase(seededCatalog(), dec("15500"), testLogger())
	voucherUC := NewVoucherUseCase(vouchers, testLogger())
	uc := NewCheckoutUseCase(pricing, voucherUC, transactions, payments, &fakeTxManager{}, 7*24*time.Hour, testLogger())
	return &checkoutFixture{uc: uc, transactions: transactions, payments: payments, vouchers: vouchers}
}

func mixedCart() []model.CartItem {
	return []model.CartItem{
		{Type: model.ItemTypeProduct, ItemID: "prod-1", Quantity: 2},
		{Type: model.ItemTypeAddon, ItemID: "addon-1", Quantity: 1},
		{Type: model.ItemTypePackage, ItemID: "pkg-1", Quantity: 1, Duration: model.DurationMonth},
	}
}

func TestCheckout_Create_Mixed(t *testing.T) {
	f := newCheckoutFixture(t)

	tx, err := f.uc.Create(context.Background(), "user-1", mixedCart(), "", model.CurrencyIDR)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.Type != model.TransactionTypeMixed {
		t.Fatalf("type: got %s want mixed_checkout", tx.Type)
	}
	if tx.Status != model.TransactionStatusCreated {
		t.Fatalf("status: got %s", tx.Status)
	}
	if !tx.OriginalAmount.Equal(dec("555000")) || !tx.FinalAmount.Equal(dec("555000")) {
		t.Fatalf("amounts: original %s final %s", tx.OriginalAmount, tx.FinalAmount)
	}
	if len(tx.Products) != 1 || len(tx.Addons) != 1 || tx.WhatsappService == nil {
		t.Fatalf("children: products %d addons %d ws %v", len(tx.Products), len(tx.Addons), tx.WhatsappService)
	}
	if tx.WhatsappService.Status != model.ChildStatusPending {
		t.Fatalf("ws status: got %s", tx.WhatsappService.Status)
	}
	if !tx.ExpiresAt.After(tx.CreatedAt) {
		t.Fatal("expiry horizon not set")
	}

	stored, err := f.transactions.FindByID(context.Background(), nil, tx.ID)
	if err != nil {
		t.Fatalf("persisted lookup: %v", err)
	}
	if stored.WhatsappService == nil {
		t.Fatal("whatsapp child not persisted")
	}
}

func TestCheckout_Create_WithVoucher(t *testing.T) {
	f := newCheckoutFixture(t)
	v := activeVoucher("PROMO10")
	v.DiscountType = "percentage"
	v.Kind = "products"
	v.Value = dec("10")
	v.MaxDiscount = decPtr("50000")
	f.vouchers.byID[v.ID] = v

	cart := []model.CartItem{
		{Type: model.ItemTypeProduct, ItemID: "prod-1", Quantity: 2},
		{Type: model.ItemTypeAddon, ItemID: "addon-1", Quantity: 1},
	}
	tx, err := f.uc.Create(context.Background(), "user-1", cart, "PROMO10", model.CurrencyIDR)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !tx.DiscountAmount.Equal(dec("30000")) {
		t.Fatalf("discount: got %s want 30000", tx.DiscountAmount)
	}
	if !tx.FinalAmount.Equal(dec("370000")) {
		t.Fatalf("final: got %s want 370000", tx.FinalAmount)
	}
	if tx.VoucherID == nil || *tx.VoucherID != v.ID {
		t.Fatalf("voucher id not recorded: %v", tx.VoucherID)
	}
	if len(f.vouchers.usages) != 0 {
		t.Fatal("usage must not be recorded at creation")
	}
}

func TestCheckout_Create_VoucherFailureAborts(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.uc.Create(context.Background(), "user-1", mixedCart(), "MISSING", model.CurrencyIDR)
	if err != domain.ErrVoucherNotFound {
		t.Fatalf("got %v, want ErrVoucherNotFound", err)
	}
	if len(f.transactions.store) != 0 {
		t.Fatal("no transaction should be created on voucher failure")
	}
}

func TestCheckout_Create_RejectsTwoPackages(t *testing.T) {
	f := newCheckoutFixture(t)

	cart := []model.CartItem{
		{Type: model.ItemTypePackage, ItemID: "pkg-1", Quantity: 1, Duration: model.DurationMonth},
		{Type: model.ItemTypePackage, ItemID: "pkg-1", Quantity: 1, Duration: model.DurationYear},
	}
	if _, err := f.uc.Create(context.Background(), "user-1", cart, "", model.CurrencyIDR); err != domain.ErrInvalidArgument {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestCheckout_Cancel(t *testing.T) {
	f := newCheckoutFixture(t)
	tx, err := f.uc.Create(context.Background(), "user-1", mixedCart(), "", model.CurrencyIDR)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.payments.store["pay-1"] = &model.Payment{
		ID: "pay-1", TransactionID: tx.ID, Status: model.PaymentStatusPending, CreatedAt: time.Now(),
	}

	if err := f.uc.Cancel(context.Background(), tx.ID, "customer request"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got, _ := f.transactions.FindByID(context.Background(), nil, tx.ID)
	if got.Status != model.TransactionStatusCancelled {
		t.Fatalf("status: got %s", got.Status)
	}
	if got.WhatsappService.Status != model.ChildStatusFailed {
		t.Fatalf("ws child: got %s want failed", got.WhatsappService.Status)
	}
	p, _ := f.payments.FindByID(context.Background(), nil, "pay-1")
	if p.Status != model.PaymentStatusCancelled {
		t.Fatalf("payment: got %s want cancelled", p.Status)
	}
	entries := f.payments.historyFor("pay-1")
	if len(entries) != 1 || entries[0].Note != "customer request" {
		t.Fatalf("history: %+v", entries)
	}

	// Terminal state rejects a second cancel.
	if err := f.uc.Cancel(context.Background(), tx.ID, "again"); err != domain.ErrInvalidStatusTransition {
		t.Fatalf("got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestCheckout_ExpireDue(t *testing.T) {
	f := newCheckoutFixture(t)
	tx, err := f.uc.Create(context.Background(), "user-1", mixedCart(), "", model.CurrencyIDR)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Push the transaction past its horizon.
	f.transactions.store[tx.ID].ExpiresAt = time.Now().Add(-time.Minute)
	f.payments.store["pay-1"] = &model.Payment{
		ID: "pay-1", TransactionID: tx.ID, Status: model.PaymentStatusPending, CreatedAt: time.Now(),
	}

	fresh, err := f.uc.Create(context.Background(), "user-2", mixedCart(), "", model.CurrencyIDR)
	if err != nil {
		t.Fatalf("Create fresh: %v", err)
	}

	n, err := f.uc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired count: got %d want 1", n)
	}

	got, _ := f.transactions.FindByID(context.Background(), nil, tx.ID)
	if got.Status != model.TransactionStatusExpired {
		t.Fatalf("status: got %s", got.Status)
	}
	if got.WhatsappService.Status != model.ChildStatusExpired {
		t.Fatalf("ws child: got %s", got.WhatsappService.Status)
	}
	p, _ := f.payments.FindByID(context.Background(), nil, "pay-1")
	if p.Status != model.PaymentStatusExpired {
		t.Fatalf("payment: got %s", p.Status)
	}

	untouched, _ := f.transactions.FindByID(context.Background(), nil, fresh.ID)
	if untouched.Status != model.TransactionStatusCreated {
		t.Fatalf("fresh transaction touched: %s", untouched.Status)
	}
}
