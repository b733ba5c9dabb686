package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// Its concrete type is infra-defined (pgx.Tx for Postgres); repositories must
// gracefully accept nil and fall back to their non-transactional path.
type Tx interface{}

// TransactionManager executes fn inside a single database transaction,
// passing the handle via tx. If fn returns an error the transaction is rolled
// back, otherwise committed. Keeps use-case interfaces free of driver types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
