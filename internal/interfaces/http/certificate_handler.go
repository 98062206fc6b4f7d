package http

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cmc/certificados-api/internal/application/certificate"
	"github.com/cmc/certificados-api/internal/application/dto"
	"github.com/cmc/certificados-api/internal/domain"
)

// CertificateHandler maneja emisión, consulta, edición, borrado y descarga de certificados.
type CertificateHandler struct {
	issue *certificate.IssueUseCase
	uc    *certificate.UseCase
	val   *Validator
}

// NewCertificateHandler construye el handler.
func NewCertificateHandler(issue *certificate.IssueUseCase, uc *certificate.UseCase, val *Validator) *CertificateHandler {
	return &CertificateHandler{issue: issue, uc: uc, val: val}
}

// Create godoc
// @Summary      Emitir certificado
// @Description  Crea tipo de servicio, orden, detalle, certificado y fichas en una transacción y genera el DOCX.
// @Tags         certificados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateCertificateRequest  true  "payload anidado"
// @Success      201   {object}  dto.CertificateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.DocumentFailureResponse
// @Router       /certificados [post]
func (h *CertificateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCertificateRequest
	if err := h.val.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.issue.Issue(c.UserContext(), in)
	if err != nil {
		var renderErr *certificate.RenderError
		if errors.As(err, &renderErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.DocumentFailureResponse{
				Code:        "DOCUMENT_RENDER_FAILED",
				Message:     "el certificado se guardó pero no se pudo generar el documento",
				Certificate: renderErr.Certificate,
			})
		}
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar certificados
// @Tags         certificados
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo de resultados (por defecto 100, tope 500)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.CertificateResponse
// @Router       /certificados [get]
func (h *CertificateHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	if err := h.val.Validate(&page); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener certificado
// @Tags         certificados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del certificado"
// @Success      200  {object}  dto.CertificateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /certificados/{id} [get]
func (h *CertificateHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar certificado
// @Tags         certificados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                           true  "ID del certificado"
// @Param        body  body  dto.UpdateCertificateRequest  true  "estado, fecha, usuario_id (opcionales)"
// @Success      200  {object}  dto.CertificateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /certificados/{id} [put]
func (h *CertificateHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateCertificateRequest
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
// @Summary      Eliminar certificado y sus fichas
// @Tags         certificados
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del certificado"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /certificados/{id} [delete]
func (h *CertificateHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Download godoc
// @Summary      Descargar certificado
// @Description  Devuelve el PDF (lo convierte la primera vez) o el DOCX con formato=docx.
// @Tags         certificados
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id       path   int     true   "ID del certificado"
// @Param        formato  query  string  false  "pdf (por defecto) o docx"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /certificados/{id}/archivo [get]
func (h *CertificateHandler) Download(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	path, err := h.uc.File(c.UserContext(), id, c.Query("formato"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Download(path, filepath.Base(path))
}

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}
