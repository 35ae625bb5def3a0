package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem es un producto vendible; su consumo de materiales lo definen sus RecipeLine.
type MenuItem struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeLine (receta / BOM): producir una unidad del menú consume Quantity del material,
// expresada en UnitLabel.
type RecipeLine struct {
	ID         string
	MenuItemID string
	MaterialID string
	Quantity   decimal.Decimal
	UnitLabel  string
}
