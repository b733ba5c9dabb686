package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

var _ repository.VoucherRepository = (*voucherRepo)(nil)

type voucherRepo struct{ pool *pgxpool.Pool }

func NewVoucherRepo(pool *pgxpool.Pool) *voucherRepo {
	return &voucherRepo{pool: pool}
}

const voucherColumns = `id, code, name, description, type, discount_type, value, min_amount, max_discount, max_uses, allow_multiple_per_user, is_active, start_date, end_date, created_at, updated_at`

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	v := &model.Voucher{}
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Description, &v.Kind, &v.DiscountType, &v.Value,
		&v.MinAmount, &v.MaxDiscount, &v.MaxUses, &v.AllowMultiplePerUser, &v.IsActive,
		&v.StartDate, &v.EndDate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return v, nil
}

func (r *voucherRepo) Save(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	const q = `
INSERT INTO vouchers (` + voucherColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  code=$2, name=$3, description=$4, type=$5, discount_type=$6, value=$7, min_amount=$8,
  max_discount=$9, max_uses=$10, allow_multiple_per_user=$11, is_active=$12,
  start_date=$13, end_date=$14, updated_at=$16;`

	_, err := execSQL(ctx, r.pool, tx, q, v.ID, v.Code, v.Name, v.Description, v.Kind, v.DiscountType,
		v.Value, v.MinAmount, v.MaxDiscount, v.MaxUses, v.AllowMultiplePerUser, v.IsActive,
		v.StartDate, v.EndDate, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *voucherRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanVoucher(row)
}

func (r *voucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanVoucher(row)
}

func (r *voucherRepo) List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error) {
	q := `SELECT ` + voucherColumns + ` FROM vouchers`
	if activeOnly {
		q += ` WHERE is_active=TRUE`
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *voucherRepo) CountUsage(ctx context.Context, tx repository.Tx, voucherID string) (int, error) {
	const q = `SELECT COUNT(*) FROM voucher_usages WHERE voucher_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, voucherID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *voucherRepo) HasUsageByUser(ctx context.Context, tx repository.Tx, voucherID, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM voucher_usages WHERE voucher_id=$1 AND user_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, voucherID, userID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *voucherRepo) HasUsageByTransaction(ctx context.Context, tx repository.Tx, voucherID, transactionID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM voucher_usages WHERE voucher_id=$1 AND transaction_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, voucherID, transactionID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *voucherRepo) SaveUsage(ctx context.Context, tx repository.Tx, u *model.VoucherUsage) error {
	const q = `
INSERT INTO voucher_usages (id, voucher_id, user_id, transaction_id, discount_amount, used_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (voucher_id, transaction_id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.VoucherID, u.UserID, u.TransactionID, u.DiscountAmount, u.UsedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
