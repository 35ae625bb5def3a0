package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// SaleItemRequest línea de una venta.
type SaleItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0,max=100000"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Items    []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Tendered decimal.Decimal   `json:"tendered" validate:"gte=0"`
	Note     string            `json:"note" validate:"max=500"`
}

// SaleQuery filtros de GET /api/sales. Day en formato 2006-01-02.
type SaleQuery struct {
	Day    string `query:"day" validate:"omitempty,datetime=2006-01-02"`
	Status string `query:"status" validate:"omitempty,oneof=completed cancelled"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

// SaleItemResponse línea de venta con el precio congelado.
type SaleItemResponse struct {
	MenuItemID   string          `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	ActorID     string             `json:"actor_id"`
	Status      string             `json:"status"`
	Items       []SaleItemResponse `json:"items"`
	Total       decimal.Decimal    `json:"total"`
	Tendered    decimal.Decimal    `json:"tendered"`
	Change      decimal.Decimal    `json:"change"`
	Note        string             `json:"note,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy string             `json:"cancelled_by,omitempty"`
}

// SaleListResponse página de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// RequirementResponse consumo de un material en unidad base.
type RequirementResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

// AvailabilityResponse resultado de GET /api/menu-items/:id/availability.
type AvailabilityResponse struct {
	MenuItemID   string                `json:"menu_item_id"`
	Quantity     int                   `json:"quantity"`
	Available    bool                  `json:"available"`
	Requirements []RequirementResponse `json:"requirements"`
	Shortages    []domain.Shortage     `json:"shortages"`
}

// NewSaleResponse mapea una transacción.
func NewSaleResponse(tx *entity.Transaction) SaleResponse {
	items := make([]SaleItemResponse, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, SaleItemResponse{
			MenuItemID:   it.MenuItemID,
			MenuItemName: it.MenuItemName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		})
	}
	return SaleResponse{
		ID:          tx.ID,
		Code:        tx.Code,
		ActorID:     tx.ActorID,
		Status:      tx.Status,
		Items:       items,
		Total:       tx.Total,
		Tendered:    tx.Tendered,
		Change:      tx.Change,
		Note:        tx.Note,
		CreatedAt:   tx.CreatedAt,
		CancelledAt: tx.CancelledAt,
		CancelledBy: tx.CancelledBy,
	}
}

// NewRequirementResponses mapea los requerimientos de materiales.
func NewRequirementResponses(reqs []entity.MaterialRequirement) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, RequirementResponse{
			MaterialID:   r.MaterialID,
			MaterialName: r.MaterialName,
			Quantity:     r.Quantity,
			Unit:         r.Unit,
		})
	}
	return out
}
