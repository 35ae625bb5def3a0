package repository

import (
	"context"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
// Los métodos devuelven (nil, nil) cuando el material no existe.
type MaterialRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Material, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Material, error)
	// GetForUpdate bloquea la fila del material hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	UpdateOnHand(ctx context.Context, id string, onHand decimal.Decimal) error
	// UpdateUnitPrice fija el costo por unidad base (promedio ponderado tras una reposición).
	UpdateUnitPrice(ctx context.Context, id string, unitPrice decimal.Decimal) error
}
