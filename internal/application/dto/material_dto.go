package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// MaterialResponse salida de un material con su existencia en unidad base.
type MaterialResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	BaseUnitID string          `json:"base_unit_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Active     bool            `json:"active"`
	Notes      string          `json:"notes,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AdjustStockRequest body para POST /api/materials/:id/adjustments.
// Unit vacío = unidad base del material. UnitCost (solo entradas) es el costo por unidad base.
type AdjustStockRequest struct {
	Direction string           `json:"direction" validate:"required,oneof=in out"`
	Amount    decimal.Decimal  `json:"amount" validate:"gt=0"`
	Unit      string           `json:"unit" validate:"omitempty,max=50"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Note      string           `json:"note" validate:"max=500"`
}

// LedgerEntryResponse asiento del libro de stock.
type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	MaterialID     string          `json:"material_id"`
	ActorID        string          `json:"actor_id"`
	Direction      string          `json:"direction"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reference      string          `json:"reference"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// HistoryQuery filtros de GET /api/materials/:id/history (fechas RFC 3339).
type HistoryQuery struct {
	Direction string `query:"direction" validate:"omitempty,oneof=in out"`
	Reference string `query:"reference"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset    int    `query:"offset" validate:"omitempty,min=0"`
}

// HistoryResponse página del historial de un material.
type HistoryResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// CreateConversionRequest body para POST /api/materials/:id/conversions.
type CreateConversionRequest struct {
	UnitLabel  string          `json:"unit_label" validate:"required,max=50"`
	Multiplier decimal.Decimal `json:"multiplier" validate:"gt=0"`
	Note       string          `json:"note" validate:"max=500"`
}

// ConversionResponse regla de conversión propia de un material.
type ConversionResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	UnitLabel  string          `json:"unit_label"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewMaterialResponse mapea un material.
func NewMaterialResponse(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:         m.ID,
		Name:       m.Name,
		BaseUnitID: m.BaseUnitID,
		OnHand:     m.OnHand,
		UnitPrice:  m.UnitPrice,
		Active:     m.Active,
		Notes:      m.Notes,
		UpdatedAt:  m.UpdatedAt,
	}
}

// NewLedgerEntryResponse mapea un asiento.
func NewLedgerEntryResponse(e *entity.StockLedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:             e.ID,
		MaterialID:     e.MaterialID,
		ActorID:        e.ActorID,
		Direction:      e.Direction,
		Quantity:       e.Quantity,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		Reference:      e.Reference,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt,
	}
}

// NewConversionResponse mapea una regla de conversión.
func NewConversionResponse(r *entity.ConversionRule) ConversionResponse {
	return ConversionResponse{
		ID:         r.ID,
		MaterialID: r.MaterialID,
		UnitLabel:  r.UnitLabel,
		Multiplier: r.Multiplier,
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
	}
}
