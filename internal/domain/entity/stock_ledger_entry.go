package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de un asiento de stock.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// StockLedgerEntry es un asiento inmutable del libro de stock de un material.
// QuantityAfter = QuantityBefore ± Quantity según Direction.
type StockLedgerEntry struct {
	ID             string
	MaterialID     string
	ActorID        string
	Direction      string
	Quantity       decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Reference      string
	Note           string
	CreatedAt      time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (e *StockLedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// Balanced verifica la aritmética del asiento.
func (e *StockLedgerEntry) Balanced() bool {
	if !e.Quantity.IsPositive() || e.QuantityAfter.IsNegative() {
		return false
	}
	if e.Direction != DirectionIn && e.Direction != DirectionOut {
		return false
	}
	return e.QuantityBefore.Add(e.Signed()).Equal(e.QuantityAfter)
}
