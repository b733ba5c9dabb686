package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, transaction_id, amount, service_fee, method, status, expires_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(&p.ID, &p.TransactionID, &p.Amount, &p.ServiceFee, &p.Method, &p.Status,
		&p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET status=$6, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.TransactionID, p.Amount, p.ServiceFee,
		p.Method, p.Status, p.ExpiresAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += ` FOR UPDATE`
	}
	q += `;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, tx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id=$1 ORDER BY created_at DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += ` FOR UPDATE`
	}
	q += `;`
	row, err := pickRow(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) loadHistory(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT id, payment_id, status, note, actor, at FROM payment_status_history WHERE payment_id=$1 ORDER BY at ASC;`, p.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()

	for rows.Next() {
		var e model.PaymentStatusEntry
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Status, &e.Note, &e.Actor, &e.At); err != nil {
			return domain.ErrReadDatabaseRow
		}
		p.StatusHistory = append(p.StatusHistory, e)
	}
	return nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) error {
	const q = `UPDATE payments SET status=$2, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status)
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

func (r *paymentRepo) AppendHistory(ctx context.Context, tx repository.Tx, entry *model.PaymentStatusEntry) error {
	const q = `
INSERT INTO payment_status_history (id, payment_id, status, note, actor, at)
VALUES ($1,$2,$3,$4,$5,$6);`

	_, err := execSQL(ctx, r.pool, tx, q, entry.ID, entry.PaymentID, entry.Status, entry.Note, entry.Actor, entry.At)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
