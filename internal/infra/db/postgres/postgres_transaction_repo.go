package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

// transactionRepo persists the transaction aggregate: the parent row plus
// product, addon and whatsapp-service child rows.
type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `id, user_id, type, status, currency, original_amount, discount_amount, final_amount, voucher_id, notes, created_at, updated_at, expires_at`

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (` + transactionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  status=$4, discount_amount=$7, final_amount=$8, voucher_id=$9, notes=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.UserID, t.Type, t.Status, t.Currency,
		t.OriginalAmount, t.DiscountAmount, t.FinalAmount, t.VoucherID, t.Notes,
		t.CreatedAt, t.UpdatedAt, t.ExpiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}

	for i := range t.Products {
		if err := r.saveProductLine(ctx, tx, &t.Products[i]); err != nil {
			return err
		}
	}
	for i := range t.Addons {
		if err := r.saveAddonLine(ctx, tx, &t.Addons[i]); err != nil {
			return err
		}
	}
	if t.WhatsappService != nil {
		if err := r.saveServiceLine(ctx, tx, t.WhatsappService); err != nil {
			return err
		}
	}
	return nil
}

func (r *transactionRepo) saveProductLine(ctx context.Context, tx repository.Tx, p *model.ProductTransaction) error {
	const q = `
INSERT INTO product_transactions (id, transaction_id, product_id, name, unit_price, quantity, status, start_date, end_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET status=$7, start_date=$8, end_date=$9;`
	if _, err := execSQL(ctx, r.pool, tx, q, p.ID, p.TransactionID, p.ProductID, p.Name, p.UnitPrice, p.Quantity, p.Status, p.StartDate, p.EndDate); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) saveAddonLine(ctx context.Context, tx repository.Tx, a *model.AddonTransaction) error {
	const q = `
INSERT INTO addon_transactions (id, transaction_id, addon_id, name, unit_price, quantity, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET status=$7;`
	if _, err := execSQL(ctx, r.pool, tx, q, a.ID, a.TransactionID, a.AddonID, a.Name, a.UnitPrice, a.Quantity, a.Status); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) saveServiceLine(ctx context.Context, tx repository.Tx, w *model.WhatsappServiceTransaction) error {
	const q = `
INSERT INTO whatsapp_service_transactions (id, transaction_id, package_id, duration, amount, status, start_date, end_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET status=$6, start_date=$7, end_date=$8;`
	if _, err := execSQL(ctx, r.pool, tx, q, w.ID, w.TransactionID, w.PackageID, w.Duration, w.Amount, w.Status, w.StartDate, w.EndDate); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += ` FOR UPDATE`
	}
	q += `;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	t := &model.Transaction{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Status, &t.Currency,
		&t.OriginalAmount, &t.DiscountAmount, &t.FinalAmount, &t.VoucherID, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &t.ExpiresAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}

	if err := r.loadChildren(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepo) loadChildren(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT id, transaction_id, product_id, name, unit_price, quantity, status, start_date, end_date FROM product_transactions WHERE transaction_id=$1;`, t.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	for rows.Next() {
		var p model.ProductTransaction
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.ProductID, &p.Name, &p.UnitPrice, &p.Quantity, &p.Status, &p.StartDate, &p.EndDate); err != nil {
			rows.Close()
			return domain.ErrReadDatabaseRow
		}
		t.Products = append(t.Products, p)
	}
	rows.Close()

	rows, err = queryRows(ctx, r.pool, tx,
		`SELECT id, transaction_id, addon_id, name, unit_price, quantity, status FROM addon_transactions WHERE transaction_id=$1;`, t.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	for rows.Next() {
		var a model.AddonTransaction
		if err := rows.Scan(&a.ID, &a.TransactionID, &a.AddonID, &a.Name, &a.UnitPrice, &a.Quantity, &a.Status); err != nil {
			rows.Close()
			return domain.ErrReadDatabaseRow
		}
		t.Addons = append(t.Addons, a)
	}
	rows.Close()

	row, err := pickRow(ctx, r.pool, tx,
		`SELECT id, transaction_id, package_id, duration, amount, status, start_date, end_date FROM whatsapp_service_transactions WHERE transaction_id=$1 LIMIT 1;`, t.ID)
	if err != nil {
		return err
	}
	var w model.WhatsappServiceTransaction
	if err := row.Scan(&w.ID, &w.TransactionID, &w.PackageID, &w.Duration, &w.Amount, &w.Status, &w.StartDate, &w.EndDate); err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return domain.ErrReadDatabaseRow
	}
	t.WhatsappService = &w
	return nil
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.TransactionStatus) error {
	const q = `UPDATE transactions SET status=$2, updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, status); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) UpdateServiceStatus(ctx context.Context, tx repository.Tx, transactionID string, status model.ChildStatus, start, end *time.Time) error {
	const q = `
UPDATE whatsapp_service_transactions
   SET status=$2,
       start_date=COALESCE($3, start_date),
       end_date=COALESCE($4, end_date)
 WHERE transaction_id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, transactionID, status, start, end)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepo) UpdateProductDates(ctx context.Context, tx repository.Tx, transactionID string, status model.ChildStatus, start, end time.Time) error {
	const q = `UPDATE product_transactions SET status=$2, start_date=$3, end_date=$4 WHERE transaction_id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, transactionID, status, start, end); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) CascadeChildren(ctx context.Context, tx repository.Tx, transactionID string, status model.ChildStatus) error {
	stmts := []string{
		`UPDATE product_transactions SET status=$2 WHERE transaction_id=$1 AND status='pending';`,
		`UPDATE addon_transactions SET status=$2 WHERE transaction_id=$1 AND status='pending';`,
		`UPDATE whatsapp_service_transactions SET status=$2 WHERE transaction_id=$1 AND status='pending';`,
	}
	for _, q := range stmts {
		if _, err := execSQL(ctx, r.pool, tx, q, transactionID, status); err != nil {
			if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
				return err
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *transactionRepo) ListExpirable(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + transactionColumns + ` FROM transactions
 WHERE status IN ('created','pending') AND expires_at < $1
 ORDER BY expires_at ASC LIMIT $2`
	if _, ok := tx.(pgx.Tx); ok {
		q += ` FOR UPDATE SKIP LOCKED`
	}
	q += `;`
	return r.list(ctx, tx, q, now, limit)
}

func (r *transactionRepo) ListPaidUnactivated(ctx context.Context, tx repository.Tx, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = 500
	}
	// Paid means the payment reached 'paid'; unactivated means the service
	// child never reached 'success'.
	const q = `
SELECT ` + transactionColumns + ` FROM transactions t
 WHERE t.type = 'whatsapp_service'
   AND t.status IN ('pending','in-progress')
   AND EXISTS (SELECT 1 FROM payments p WHERE p.transaction_id = t.id AND p.status = 'paid')
   AND EXISTS (SELECT 1 FROM whatsapp_service_transactions w WHERE w.transaction_id = t.id AND w.status <> 'success')
 ORDER BY t.created_at ASC LIMIT $1;`
	return r.list(ctx, tx, q, limit)
}

func (r *transactionRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Transaction, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}

	var out []*model.Transaction
	for rows.Next() {
		t := new(model.Transaction)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Status, &t.Currency,
			&t.OriginalAmount, &t.DiscountAmount, &t.FinalAmount, &t.VoucherID, &t.Notes,
			&t.CreatedAt, &t.UpdatedAt, &t.ExpiresAt); err != nil {
			rows.Close()
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	rows.Close()

	for _, t := range out {
		if err := r.loadChildren(ctx, tx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *transactionRepo) HasNewerPaid(ctx context.Context, tx repository.Tx, userID, packageID string, after time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM transactions t
    JOIN whatsapp_service_transactions w ON w.transaction_id = t.id
   WHERE t.user_id = $1
     AND w.package_id = $2
     AND t.created_at > $3
     AND t.status IN ('in-progress','success')
);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, packageID, after)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
