package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

var _ repository.EntitlementRepository = (*entitlementRepo)(nil)

// entitlementRepo persists the unique (customer, package) service record.
// The activation engine serializes writes with an advisory lock, so the
// upsert here never races with itself.
type entitlementRepo struct{ pool *pgxpool.Pool }

func NewEntitlementRepo(pool *pgxpool.Pool) *entitlementRepo {
	return &entitlementRepo{pool: pool}
}

func (r *entitlementRepo) FindByCustomerAndPackage(ctx context.Context, tx repository.Tx, customerID, packageID string) (*model.Entitlement, error) {
	q := `SELECT id, customer_id, package_id, expired_at, status, created_at, updated_at
  FROM entitlements WHERE customer_id=$1 AND package_id=$2`
	if _, ok := tx.(pgx.Tx); ok {
		q += ` FOR UPDATE`
	}
	q += `;`

	row, err := pickRow(ctx, r.pool, tx, q, customerID, packageID)
	if err != nil {
		return nil, err
	}

	e := &model.Entitlement{}
	if err := row.Scan(&e.ID, &e.CustomerID, &e.PackageID, &e.ExpiredAt, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}

func (r *entitlementRepo) Upsert(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	const q = `
INSERT INTO entitlements (id, customer_id, package_id, expired_at, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (customer_id, package_id) DO UPDATE SET
  expired_at=$4, status=$5, updated_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.CustomerID, e.PackageID, e.ExpiredAt, e.Status, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
