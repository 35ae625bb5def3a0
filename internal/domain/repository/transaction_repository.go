package repository

import (
	"context"
	"time"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// TransactionFilter filtros para listar ventas.
type TransactionFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
	Offset int
}

// TransactionRepository define el puerto de persistencia para ventas y sus líneas.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	CreateItem(ctx context.Context, item *entity.TransactionItem) error
	// GetByID carga cabecera y líneas; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate carga y bloquea la cabecera (con líneas) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	MarkCancelled(ctx context.Context, id, actorID string, at time.Time) error
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
}

// SequenceRepository entrega consecutivos diarios sin duplicados bajo concurrencia.
type SequenceRepository interface {
	// Next incrementa y devuelve el consecutivo del día (1, 2, ...). Debe ejecutarse dentro
	// de la misma unidad de trabajo que persiste la venta.
	Next(ctx context.Context, day time.Time) (int, error)
}

// TxRepos agrupa los repositorios atados a una misma unidad de trabajo.
type TxRepos struct {
	Materials    MaterialRepository
	Ledger       StockLedgerRepository
	Transactions TransactionRepository
	Sequences    SequenceRepository
}
