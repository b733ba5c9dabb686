package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

var _ repository.CatalogRepository = (*catalogRepo)(nil)

// catalogRepo reads the product/addon/package catalog. Inactive rows are
// invisible to checkout, so every lookup filters on active.
type catalogRepo struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) FindProduct(ctx context.Context, id string) (*model.Product, error) {
	const q = `SELECT id, name, price_idr, price_usd, active, created_at FROM products WHERE id=$1 AND active=TRUE;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}

	p := &model.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.PriceIDR, &p.PriceUSD, &p.Active, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *catalogRepo) FindAddon(ctx context.Context, id string) (*model.Addon, error) {
	const q = `SELECT id, name, price_idr, price_usd, active, created_at FROM addons WHERE id=$1 AND active=TRUE;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}

	a := &model.Addon{}
	if err := row.Scan(&a.ID, &a.Name, &a.PriceIDR, &a.PriceUSD, &a.Active, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *catalogRepo) FindPackage(ctx context.Context, id string) (*model.WhatsAppPackage, error) {
	const q = `SELECT id, name, price_month_idr, price_year_idr, max_sessions, active, created_at FROM whatsapp_packages WHERE id=$1 AND active=TRUE;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}

	w := &model.WhatsAppPackage{}
	if err := row.Scan(&w.ID, &w.Name, &w.PriceMonthIDR, &w.PriceYearIDR, &w.MaxSessions, &w.Active, &w.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return w, nil
}

// SaveProduct, SaveAddon and SavePackage exist for seeding and admin tooling.

func (r *catalogRepo) SaveProduct(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (id, name, price_idr, price_usd, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET name=$2, price_idr=$3, price_usd=$4, active=$5;`
	if _, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.PriceIDR, p.PriceUSD, p.Active, p.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *catalogRepo) SaveAddon(ctx context.Context, tx repository.Tx, a *model.Addon) error {
	const q = `
INSERT INTO addons (id, name, price_idr, price_usd, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET name=$2, price_idr=$3, price_usd=$4, active=$5;`
	if _, err := execSQL(ctx, r.pool, tx, q, a.ID, a.Name, a.PriceIDR, a.PriceUSD, a.Active, a.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *catalogRepo) SavePackage(ctx context.Context, tx repository.Tx, w *model.WhatsAppPackage) error {
	const q = `
INSERT INTO whatsapp_packages (id, name, price_month_idr, price_year_idr, max_sessions, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET name=$2, price_month_idr=$3, price_year_idr=$4, max_sessions=$5, active=$6;`
	if _, err := execSQL(ctx, r.pool, tx, q, w.ID, w.Name, w.PriceMonthIDR, w.PriceYearIDR, w.MaxSessions, w.Active, w.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
