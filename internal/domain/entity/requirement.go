package entity

import "github.com/shopspring/decimal"

// MaterialRequirement cantidad de un material (en su unidad base) que consume una venta.
type MaterialRequirement struct {
	MaterialID   string
	MaterialName string
	Quantity     decimal.Decimal
	Unit         string // abreviatura de la unidad base
}
