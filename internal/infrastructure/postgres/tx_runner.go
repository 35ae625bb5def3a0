package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, log zerolog.Logger) *TxRunner {
	return &TxRunner{pool: pool, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Ante un fallo de serialización (40001) o un deadlock (40P01) se reintenta una sola vez.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	err := r.runOnce(ctx, fn)
	if err != nil && isRetryable(err) {
		r.log.Warn().Err(err).Msg("conflicto de concurrencia, reintentando unidad de trabajo")
		err = r.runOnce(ctx, fn)
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := repository.TxRepos{
		Materials:    NewMaterialRepository(tx),
		Ledger:       NewStockLedgerRepository(tx),
		Transactions: NewTransactionRepository(tx),
		Sequences:    NewSequenceRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
