//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
)

func newTestTransaction(userID string, expiresAt time.Time) *model.Transaction {
	now := time.Now()
	t := &model.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           model.TransactionTypeMixed,
		Status:         model.TransactionStatusCreated,
		Currency:       model.CurrencyIDR,
		OriginalAmount: decimal.NewFromInt(555000),
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.NewFromInt(555000),
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      expiresAt,
	}
	t.Products = []model.ProductTransaction{{
		ID:            uuid.NewString(),
		TransactionID: t.ID,
		ProductID:     "prod-1",
		Name:          "API Access",
		UnitPrice:     decimal.NewFromInt(150000),
		Quantity:      2,
		Status:        model.ChildStatusPending,
	}}
	t.Addons = []model.AddonTransaction{{
		ID:            uuid.NewString(),
		TransactionID: t.ID,
		AddonID:       "addon-1",
		Name:          "Extra Session",
		UnitPrice:     decimal.NewFromInt(100000),
		Quantity:      1,
		Status:        model.ChildStatusPending,
	}}
	t.WhatsappService = &model.WhatsappServiceTransaction{
		ID:            uuid.NewString(),
		TransactionID: t.ID,
		PackageID:     "pkg-1",
		Duration:      model.DurationMonth,
		Amount:        decimal.NewFromInt(155000),
		Status:        model.ChildStatusPending,
	}
	return t
}

func TestTransactionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewTransactionRepo(testPool)
	payments := NewPaymentRepo(testPool)

	t.Run("should save and reload with all children", func(t *testing.T) {
		cleanup(t)
		tr := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		if err := repo.Save(ctx, nil, tr); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := repo.FindByID(ctx, nil, tr.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Type != model.TransactionTypeMixed || got.Status != model.TransactionStatusCreated {
			t.Fatalf("wrong parent row: %+v", got)
		}
		if len(got.Products) != 1 || got.Products[0].Quantity != 2 {
			t.Fatalf("product line lost: %+v", got.Products)
		}
		if len(got.Addons) != 1 {
			t.Fatalf("addon line lost: %+v", got.Addons)
		}
		if got.WhatsappService == nil || got.WhatsappService.Duration != model.DurationMonth {
			t.Fatalf("service line lost: %+v", got.WhatsappService)
		}
		if !got.FinalAmount.Equal(decimal.NewFromInt(555000)) {
			t.Fatalf("amount roundtrip: got %s", got.FinalAmount)
		}
	})

	t.Run("should update parent and child statuses", func(t *testing.T) {
		cleanup(t)
		tr := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		repo.Save(ctx, nil, tr)

		if err := repo.UpdateStatus(ctx, nil, tr.ID, model.TransactionStatusPending); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		start := time.Now()
		end := start.AddDate(0, 1, 0)
		if err := repo.UpdateServiceStatus(ctx, nil, tr.ID, model.ChildStatusSuccess, &start, &end); err != nil {
			t.Fatalf("UpdateServiceStatus failed: %v", err)
		}
		if err := repo.UpdateProductDates(ctx, nil, tr.ID, model.ChildStatusSuccess, start, start.AddDate(1, 0, 0)); err != nil {
			t.Fatalf("UpdateProductDates failed: %v", err)
		}

		got, _ := repo.FindByID(ctx, nil, tr.ID)
		if got.Status != model.TransactionStatusPending {
			t.Fatalf("parent status not updated: %s", got.Status)
		}
		if got.WhatsappService.Status != model.ChildStatusSuccess || got.WhatsappService.EndDate == nil {
			t.Fatalf("service line not stamped: %+v", got.WhatsappService)
		}
		if got.Products[0].Status != model.ChildStatusSuccess || got.Products[0].StartDate == nil {
			t.Fatalf("product line not stamped: %+v", got.Products[0])
		}
	})

	t.Run("should cascade only pending children", func(t *testing.T) {
		cleanup(t)
		tr := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		repo.Save(ctx, nil, tr)
		start := time.Now()
		end := start.AddDate(0, 1, 0)
		repo.UpdateServiceStatus(ctx, nil, tr.ID, model.ChildStatusSuccess, &start, &end)

		if err := repo.CascadeChildren(ctx, nil, tr.ID, model.ChildStatusFailed); err != nil {
			t.Fatalf("CascadeChildren failed: %v", err)
		}

		got, _ := repo.FindByID(ctx, nil, tr.ID)
		if got.Products[0].Status != model.ChildStatusFailed || got.Addons[0].Status != model.ChildStatusFailed {
			t.Fatal("pending children not cascaded")
		}
		if got.WhatsappService.Status != model.ChildStatusSuccess {
			t.Fatal("cascade touched a settled child")
		}
	})

	t.Run("should list expirable transactions", func(t *testing.T) {
		cleanup(t)
		overdue := newTestTransaction("user-1", time.Now().Add(-time.Hour))
		fresh := newTestTransaction("user-2", time.Now().Add(7*24*time.Hour))
		settled := newTestTransaction("user-3", time.Now().Add(-time.Hour))
		repo.Save(ctx, nil, overdue)
		repo.Save(ctx, nil, fresh)
		repo.Save(ctx, nil, settled)
		testPool.Exec(ctx, `UPDATE transactions SET status = 'success' WHERE id = $1`, settled.ID)

		due, err := repo.ListExpirable(ctx, nil, time.Now(), 10)
		if err != nil {
			t.Fatalf("ListExpirable failed: %v", err)
		}
		if len(due) != 1 || due[0].ID != overdue.ID {
			t.Fatalf("expected only the overdue transaction, got %d", len(due))
		}
	})

	t.Run("should list paid unactivated service transactions", func(t *testing.T) {
		cleanup(t)
		stuck := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		stuck.Type = model.TransactionTypeWhatsapp
		stuck.Products = nil
		stuck.Addons = nil
		repo.Save(ctx, nil, stuck)
		testPool.Exec(ctx, `UPDATE transactions SET status = 'pending' WHERE id = $1`, stuck.ID)
		seedPaidPayment(t, payments, stuck.ID)

		unpaid := newTestTransaction("user-2", time.Now().Add(7*24*time.Hour))
		unpaid.Type = model.TransactionTypeWhatsapp
		unpaid.Products = nil
		unpaid.Addons = nil
		repo.Save(ctx, nil, unpaid)

		got, err := repo.ListPaidUnactivated(ctx, nil, 10)
		if err != nil {
			t.Fatalf("ListPaidUnactivated failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != stuck.ID {
			t.Fatalf("expected only the stuck paid transaction, got %d", len(got))
		}
	})

	t.Run("should detect a newer paid transaction for the same package", func(t *testing.T) {
		cleanup(t)
		old := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		repo.Save(ctx, nil, old)
		cutoff := time.Now()

		newer := newTestTransaction("user-1", time.Now().Add(7*24*time.Hour))
		repo.Save(ctx, nil, newer)
		testPool.Exec(ctx, `UPDATE transactions SET status = 'success', created_at = NOW() + INTERVAL '1 minute' WHERE id = $1`, newer.ID)

		has, err := repo.HasNewerPaid(ctx, nil, "user-1", "pkg-1", cutoff)
		if err != nil {
			t.Fatalf("HasNewerPaid failed: %v", err)
		}
		if !has {
			t.Fatal("newer paid transaction not detected")
		}

		has, err = repo.HasNewerPaid(ctx, nil, "user-other", "pkg-1", cutoff)
		if err != nil || has {
			t.Fatalf("wrong user matched: has=%v err=%v", has, err)
		}
	})

	t.Run("should return ErrNotFound for missing id", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, uuid.NewString()); err != domain.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func seedPaidPayment(t *testing.T, repo *paymentRepo, transactionID string) {
	t.Helper()
	p := &model.Payment{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		Amount:        decimal.NewFromInt(155000),
		ServiceFee:    decimal.NewFromInt(5000),
		Method:        "simulated",
		Status:        model.PaymentStatusPaid,
		ExpiresAt:     time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := repo.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
}
