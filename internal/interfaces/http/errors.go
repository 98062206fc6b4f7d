package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
)

// writeError traduce errores de dominio a la respuesta HTTP correspondiente.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrReference):
		status, code = fiber.StatusBadRequest, "REFERENCE"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrPersistence):
		status, code = fiber.StatusInternalServerError, "PERSISTENCE"
	case errors.Is(err, domain.ErrConversion):
		status, code = fiber.StatusInternalServerError, "CONVERSION"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
