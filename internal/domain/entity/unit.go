package entity

import "github.com/shopspring/decimal"

// Dimensiones de medida.
const (
	DimensionWeight = "weight"
	DimensionVolume = "volume"
	DimensionCount  = "count"
)

// Unit es una unidad de medida. Cantidad en esta unidad * Factor = cantidad en la unidad base
// de su dimensión. La unidad base (IsBase) tiene Factor = 1.
type Unit struct {
	ID           string
	Name         string
	Abbreviation string
	Dimension    string
	BaseUnitID   string // vacío si es la unidad base
	Factor       decimal.Decimal
	IsBase       bool
}

// ValidDimension indica si d es una dimensión conocida.
func ValidDimension(d string) bool {
	switch d {
	case DimensionWeight, DimensionVolume, DimensionCount:
		return true
	}
	return false
}
