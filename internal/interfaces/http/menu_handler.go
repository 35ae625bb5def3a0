package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/resto-pos-api/internal/application/dto"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/domain"
)

// MenuHandler consulta de disponibilidad de productos del menú.
type MenuHandler struct {
	resolver *recipe.Resolver
}

// NewMenuHandler construye el handler.
func NewMenuHandler(resolver *recipe.Resolver) *MenuHandler {
	return &MenuHandler{resolver: resolver}
}

// Availability godoc
// @Summary      ¿Alcanza el stock para vender N unidades?
// @Tags         menu
// @Security     Bearer
// @Produce      json
// @Param        id        path      string  true   "ID del producto del menú"
// @Param        quantity  query     int     false  "unidades (defecto 1)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/menu-items/{id}/availability [get]
func (h *MenuHandler) Availability(c *fiber.Ctx) error {
	qty := c.QueryInt("quantity", 1)
	if qty <= 0 {
		return writeError(c, domain.NewValidationError("quantity", "debe ser mayor que 0"))
	}
	av, err := h.resolver.CheckAvailability(c.UserContext(), c.Params("id"), qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		MenuItemID:   av.MenuItemID,
		Quantity:     av.Quantity,
		Available:    av.Available,
		Requirements: dto.NewRequirementResponses(av.Requirements),
		Shortages:    av.Shortages,
	})
}
