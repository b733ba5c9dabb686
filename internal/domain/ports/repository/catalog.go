package repository

import (
	"context"

	"whatsapp-commerce-billing/internal/domain/model"
)

// CatalogRepository is a read-only port over the product/addon/package
// catalog. Lookups return domain.ErrItemNotFound for unknown or inactive ids.
type CatalogRepository interface {
	FindProduct(ctx context.Context, id string) (*model.Product, error)
	FindAddon(ctx context.Context, id string) (*model.Addon, error)
	FindPackage(ctx context.Context, id string) (*model.WhatsAppPackage, error)
}
