package repository

import (
	"context"
	"time"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// LedgerFilter filtros para consultar el libro de stock de un material.
type LedgerFilter struct {
	Direction string
	Reference string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockLedgerRepository puerto del libro de stock: solo inserción y lectura.
type StockLedgerRepository interface {
	Create(ctx context.Context, entry *entity.StockLedgerEntry) error
	// ListByMaterial devuelve los asientos más recientes primero.
	ListByMaterial(ctx context.Context, materialID string, filter LedgerFilter) ([]*entity.StockLedgerEntry, error)
	// ListChronological devuelve todos los asientos del material en orden de creación.
	ListChronological(ctx context.Context, materialID string) ([]*entity.StockLedgerEntry, error)
	// ListByReference devuelve los asientos de una referencia en orden de creación.
	ListByReference(ctx context.Context, reference string) ([]*entity.StockLedgerEntry, error)
}
