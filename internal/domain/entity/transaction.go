package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción de venta. CANCELLED es terminal.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

// Transaction es una venta registrada. Total = Σ Items.Subtotal y Change = Tendered - Total.
type Transaction struct {
	ID          string
	Code        string
	ActorID     string
	Items       []TransactionItem
	Total       decimal.Decimal
	Tendered    decimal.Decimal
	Change      decimal.Decimal
	Status      string
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
	CancelledBy string
}

// TransactionItem línea de venta con precio congelado al momento de la venta.
type TransactionItem struct {
	ID            string
	TransactionID string
	MenuItemID    string
	MenuItemName  string
	Quantity      int
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// Cancelled indica si la transacción ya fue revertida.
func (t *Transaction) Cancelled() bool {
	return t.Status == TransactionStatusCancelled
}
