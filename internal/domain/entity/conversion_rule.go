package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRule define una conversión propia de un material:
// 1 UnitLabel = Multiplier unidades base del material (ej. 1 "ekor" de pollo = 8 "potong").
type ConversionRule struct {
	ID         string
	MaterialID string
	UnitLabel  string
	Multiplier decimal.Decimal
	Note       string
	CreatedAt  time.Time
}
