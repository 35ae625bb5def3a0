package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/dto"
)

// UnitHandler expone el registro de unidades.
type UnitHandler struct {
	conversions *conversion.Service
}

// NewUnitHandler construye el handler.
func NewUnitHandler(conversions *conversion.Service) *UnitHandler {
	return &UnitHandler{conversions: conversions}
}

// List godoc
// @Summary      Listar unidades de medida
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UnitResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *UnitHandler) List(c *fiber.Ctx) error {
	units, err := h.conversions.ListUnits(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.NewUnitResponse(u))
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir una cantidad entre unidades de la misma dimensión
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ConvertRequest  true  "quantity, from, to (id, abreviatura o nombre)"
// @Success      200   {object}  dto.ConvertResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/units/convert [post]
func (h *UnitHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	result, err := h.conversions.ConvertUnit(c.UserContext(), in.Quantity, in.From, in.To)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConvertResponse{Quantity: in.Quantity, From: in.From, Result: result, To: in.To})
}
