package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/application/usecase"
)

// RoleHandler consulta y administración de roles.
type RoleHandler struct {
	uc  *usecase.RoleUseCase
	val *Validator
}

// NewRoleHandler construye el handler.
func NewRoleHandler(uc *usecase.RoleUseCase, val *Validator) *RoleHandler {
	return &RoleHandler{uc: uc, val: val}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.RoleResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RoleRequest  true  "nombre"
// @Success      201  {object}  dto.RoleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.RoleRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Rename godoc
// @Summary      Renombrar rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int              true  "ID del rol"
// @Param        body  body  dto.RoleRequest  true  "nombre"
// @Success      200  {object}  dto.RoleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /roles/{id} [put]
func (h *RoleHandler) Rename(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RoleRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Rename(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
