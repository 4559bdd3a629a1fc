package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxStarter é satisfeito por *pgxpool.Pool e *pgx.Conn.
type TxStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithTx executa uma função dentro de uma transação explícita.
func WithTx(ctx context.Context, pool TxStarter, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
