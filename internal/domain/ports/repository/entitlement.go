package repository

import (
	"context"

	"whatsapp-commerce-billing/internal/domain/model"
)

// EntitlementRepository persists (customer, package) service records.
// Only the activation engine may write through this port.
type EntitlementRepository interface {
	// FindByCustomerAndPackage returns domain.ErrNotFound when absent. With a
	// live tx the row is locked FOR UPDATE.
	FindByCustomerAndPackage(ctx context.Context, tx Tx, customerID, packageID string) (*model.Entitlement, error)
	// Upsert inserts or replaces the unique (customer, package) row.
	Upsert(ctx context.Context, tx Tx, e *model.Entitlement) error
}
