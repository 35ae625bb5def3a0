package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa una materia prima con su existencia actual expresada en la unidad base.
// OnHand nunca es negativo; toda mutación va acompañada de un StockLedgerEntry.
type Material struct {
	ID         string
	Name       string
	BaseUnitID string
	OnHand     decimal.Decimal
	UnitPrice  decimal.Decimal
	Active     bool
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
