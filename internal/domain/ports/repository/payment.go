package repository

import (
	"context"

	"whatsapp-commerce-billing/internal/domain/model"
)

// PaymentRepository persists payments and their append-only status history.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	// FindByTransactionID returns the payment tied to a transaction, or
	// domain.ErrNotFound when none exists.
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus) error
	AppendHistory(ctx context.Context, tx Tx, entry *model.PaymentStatusEntry) error
}
