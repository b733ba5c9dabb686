package repository

import (
	"context"
	"time"

	"whatsapp-commerce-billing/internal/domain/model"
)

// TransactionRepository persists checkout transactions and their child rows.
// Save writes the aggregate (parent plus children); callers that need
// atomicity across the aggregate pass a Tx from the TransactionManager.
type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	// FindByID loads the transaction with all child rows. When tx is a live
	// transaction handle the parent row is locked FOR UPDATE.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.TransactionStatus) error

	// UpdateServiceStatus updates the whatsapp child of a transaction,
	// stamping dates when provided.
	UpdateServiceStatus(ctx context.Context, tx Tx, transactionID string, status model.ChildStatus, start, end *time.Time) error
	// UpdateProductDates stamps activation dates on all product children.
	UpdateProductDates(ctx context.Context, tx Tx, transactionID string, status model.ChildStatus, start, end time.Time) error
	// CascadeChildren moves every still-pending child row to status.
	CascadeChildren(ctx context.Context, tx Tx, transactionID string, status model.ChildStatus) error

	// ListExpirable returns created/pending transactions whose ExpiresAt has
	// passed, locked FOR UPDATE when tx is live.
	ListExpirable(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Transaction, error)
	// ListPaidUnactivated returns whatsapp_service transactions whose payment
	// is paid but whose service child has not reached success.
	ListPaidUnactivated(ctx context.Context, tx Tx, limit int) ([]*model.Transaction, error)
	// HasNewerPaid reports whether a later paid transaction exists for the
	// same (user, package) pair.
	HasNewerPaid(ctx context.Context, tx Tx, userID, packageID string, after time.Time) (bool, error)
}
