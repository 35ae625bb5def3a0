package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// UnitResponse salida de una unidad del registro.
type UnitResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Abbreviation string          `json:"abbreviation"`
	Dimension    string          `json:"dimension"`
	BaseUnitID   string          `json:"base_unit_id,omitempty"`
	Factor       decimal.Decimal `json:"factor"`
	IsBase       bool            `json:"is_base"`
}

// ConvertRequest body para POST /api/units/convert.
type ConvertRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
	From     string          `json:"from" validate:"required"`
	To       string          `json:"to" validate:"required"`
}

// ConvertResponse resultado de una conversión.
type ConvertResponse struct {
	Quantity decimal.Decimal `json:"quantity"`
	From     string          `json:"from"`
	Result   decimal.Decimal `json:"result"`
	To       string          `json:"to"`
}

// NewUnitResponse mapea una unidad.
func NewUnitResponse(u *entity.Unit) UnitResponse {
	return UnitResponse{
		ID:           u.ID,
		Name:         u.Name,
		Abbreviation: u.Abbreviation,
		Dimension:    u.Dimension,
		BaseUnitID:   u.BaseUnitID,
		Factor:       u.Factor,
		IsBase:       u.IsBase,
	}
}
