package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/resto-pos-api/internal/application/dto"
	"github.com/jhoicas/resto-pos-api/internal/domain"
)

// statusFor traduce la clase del error de dominio a un status HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde el ErrorResponse del error. Los errores internos no exponen su texto.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	resp := dto.ErrorResponse{Code: domain.Code(err), Message: err.Error()}
	if status == fiber.StatusInternalServerError {
		resp.Message = "error interno, intente más tarde"
	}

	var ve *domain.ValidationError
	var se *domain.ShortageError
	var pe *domain.PaymentError
	switch {
	case errors.As(err, &ve):
		resp.Fields = ve.Fields
	case errors.As(err, &se):
		resp.Details = fiber.Map{"shortages": se.Shortages}
	case errors.As(err, &pe):
		resp.Details = fiber.Map{"total": pe.Total, "tendered": pe.Tendered}
	}
	return c.Status(status).JSON(resp)
}

// errorHandler es el ErrorHandler de la app: errores de Fiber (404 de ruta, body muy grande)
// conservan su status; el resto pasa por writeError.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
