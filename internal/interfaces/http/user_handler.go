package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cmc/certificados-api/internal/application/auth"
	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/application/usecase"
	"github.com/cmc/certificados-api/internal/domain"
)

// UserHandler gestión de usuarios (admin) y perfil del usuario autenticado.
type UserHandler struct {
	uc     *usecase.UserUseCase
	authUC *auth.AuthUseCase
	val    *Validator
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, authUC *auth.AuthUseCase, val *Validator) *UserHandler {
	return &UserHandler{uc: uc, authUC: authUC, val: val}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario (administrador)
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RegisterRequest  true  "datos del usuario"
// @Success      201  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /usuarios [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.authUC.RegisterUser(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /usuarios/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                    true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "campos a cambiar"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /usuarios/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateUserRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /usuarios/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Usuario eliminado"})
}

// GetProfile godoc
// @Summary      Perfil del usuario autenticado
// @Tags         perfil
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /perfil [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Actualizar perfil
// @Description  Solo cambian los campos enviados.
// @Tags         perfil
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateProfileRequest  true  "nombre, direccion, telefono (opcionales)"
// @Success      200  {object}  dto.ProfileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /perfil [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProfileResponse{Message: "Perfil actualizado", User: *out})
}

// ChangePassword godoc
// @Summary      Cambiar contraseña
// @Tags         perfil
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "nueva_contrasena"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /cambiar-contrasena [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	if GetUserID(c) == 0 {
		return writeError(c, domain.ErrUnauthorized)
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetUserID(c), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Contraseña actualizada"})
}
