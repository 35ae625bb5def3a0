package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/resto-pos-api/internal/application/dto"
	"github.com/jhoicas/resto-pos-api/internal/application/sales"
)

// SaleHandler registro, consulta, anulación y recibo de ventas.
type SaleHandler struct {
	engine   *sales.Engine
	receipts *sales.ReceiptUseCase
}

// NewSaleHandler construye el handler. receipts puede ser nil (sin recibo PDF).
func NewSaleHandler(engine *sales.Engine, receipts *sales.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{engine: engine, receipts: receipts}
}

// Create godoc
// @Summary      Registrar una venta
// @Description  Descuenta los materiales de las recetas de forma atómica. Si falta stock
// @Description  responde 409 INSUFFICIENT_STOCK con todos los faltantes en details.shortages.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSaleRequest  true  "items, tendered, note"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	items := make([]sales.SaleItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.SaleItemInput{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}
	tx, err := h.engine.CreateSale(c.UserContext(), sales.CreateSaleInput{
		ActorID:  GetUserID(c),
		Tendered: in.Tendered,
		Note:     in.Note,
		Items:    items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(tx))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        day     query  string  false  "YYYY-MM-DD (zona horaria de ventas)"
// @Param        status  query  string  false  "completed | cancelled"
// @Param        limit   query  int     false  "máx. 500 (defecto 50)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q dto.SaleQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	filter := sales.SaleFilter{Status: q.Status, Limit: q.Limit, Offset: q.Offset}
	if q.Day != "" {
		day, _ := time.ParseInLocation("2006-01-02", q.Day, h.engine.Location())
		filter.Day = &day
	}
	list, err := h.engine.ListSales(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, dto.NewSaleResponse(tx))
	}
	return c.JSON(dto.SaleListResponse{Items: items, Page: page(q.Limit, q.Offset, len(items))})
}

// GetByID godoc
// @Summary      Obtener una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.engine.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSaleResponse(tx))
}

// Cancel godoc
// @Summary      Anular una venta
// @Description  Devuelve al stock exactamente lo que la venta descontó.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	tx, err := h.engine.CancelSale(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSaleResponse(tx))
}

// Receipt godoc
// @Summary      Recibo PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	if h.receipts == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "recibos deshabilitados"})
	}
	pdf, filename, err := h.receipts.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
