package stock

import (
	"context"

	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo; Commit si retorna nil, Rollback si error.
// Los repositorios recibidos quedan atados a esa unidad de trabajo.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// UnitResolver traduce etiquetas de unidad a la unidad base de un material (tabla de conversiones).
type UnitResolver interface {
	// Resolve devuelve cuántas unidades base del material equivalen a 1 unitLabel.
	Resolve(ctx context.Context, materialID, unitLabel string) (decimal.Decimal, error)
	// BaseUnitLabel abreviatura legible de la unidad base.
	BaseUnitLabel(ctx context.Context, baseUnitID string) string
}
