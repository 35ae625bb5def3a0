package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/dto"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

const defaultPageLimit = 50

// MaterialHandler existencias, ajustes, historial y conversiones de materiales.
type MaterialHandler struct {
	ledger      *stock.Ledger
	conversions *conversion.Service
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(ledger *stock.Ledger, conversions *conversion.Service) *MaterialHandler {
	return &MaterialHandler{ledger: ledger, conversions: conversions}
}

// List godoc
// @Summary      Listar materiales con su existencia
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "solo activos"
// @Success      200  {array}   dto.MaterialResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	materials, err := h.ledger.ListMaterials(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, dto.NewMaterialResponse(m))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ledger.GetMaterial(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMaterialResponse(m))
}

// Adjust godoc
// @Summary      Registrar reposición o baja manual
// @Description  amount se expresa en unit (vacío = unidad base del material).
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID del material"
// @Param        body  body      dto.AdjustStockRequest  true  "direction (in|out), amount, unit, unit_cost, note"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/adjustments [post]
func (h *MaterialHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	entry, err := h.ledger.AdjustStock(c.UserContext(), stock.AdjustInput{
		MaterialID: c.Params("id"),
		Direction:  in.Direction,
		Amount:     in.Amount,
		UnitLabel:  in.Unit,
		UnitCost:   in.UnitCost,
		ActorID:    GetUserID(c),
		Note:       in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(entry))
}

// History godoc
// @Summary      Historial de movimientos de un material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del material"
// @Param        direction  query  string  false  "in | out"
// @Param        reference  query  string  false  "código de venta o ajuste"
// @Param        from       query  string  false  "RFC 3339"
// @Param        to         query  string  false  "RFC 3339"
// @Param        limit      query  int     false  "máx. 500 (defecto 50)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/history [get]
func (h *MaterialHandler) History(c *fiber.Ctx) error {
	var q dto.HistoryQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	filter := repository.LedgerFilter{
		Direction: q.Direction,
		Reference: q.Reference,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.From != "" {
		from, _ := time.Parse(time.RFC3339, q.From)
		filter.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(time.RFC3339, q.To)
		filter.To = &to
	}
	entries, err := h.ledger.GetStockHistory(c.UserContext(), c.Params("id"), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewLedgerEntryResponse(e))
	}
	return c.JSON(dto.HistoryResponse{Items: items, Page: page(q.Limit, q.Offset, len(items))})
}

// Reconcile godoc
// @Summary      Conciliar el libro de stock de un material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del material"
// @Success      200  {object}  stock.Reconciliation
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/reconciliation [get]
func (h *MaterialHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.ledger.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// ListConversions godoc
// @Summary      Conversiones propias de un material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del material"
// @Success      200  {array}   dto.ConversionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/conversions [get]
func (h *MaterialHandler) ListConversions(c *fiber.Ctx) error {
	rules, err := h.conversions.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ConversionResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, dto.NewConversionResponse(r))
	}
	return c.JSON(out)
}

// CreateConversion godoc
// @Summary      Crear una conversión propia del material
// @Description  1 unit_label = multiplier unidades base del material.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del material"
// @Param        body  body      dto.CreateConversionRequest  true  "unit_label, multiplier, note"
// @Success      201   {object}  dto.ConversionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/conversions [post]
func (h *MaterialHandler) CreateConversion(c *fiber.Ctx) error {
	var in dto.CreateConversionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	rule, err := h.conversions.Create(c.UserContext(), conversion.CreateRuleInput{
		MaterialID: c.Params("id"),
		UnitLabel:  in.UnitLabel,
		Multiplier: in.Multiplier,
		Note:       in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewConversionResponse(rule))
}

func page(limit, offset, count int) dto.PageResponse {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return dto.PageResponse{Limit: limit, Offset: offset, Count: count}
}
