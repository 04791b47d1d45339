package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// ConsultationHandler maneja las consultas de derivación y de remisión.
type ConsultationHandler struct {
	wf  *consultation.Workflow
	log *logger.Logger
}

// NewConsultationHandler construye el handler.
func NewConsultationHandler(wf *consultation.Workflow, log *logger.Logger) *ConsultationHandler {
	return &ConsultationHandler{wf: wf, log: log}
}

// Create godoc
// @Summary      Registrar consulta de un traslado
// @Description  Doctor y jefe de departamento deben pertenecer al departamento destino del traslado.
// @Tags         consultations
// @Accept       json
// @Produce      json
// @Param        kind  path  string                         true  "derivation | referral"
// @Param        body  body  dto.CreateConsultationRequest  true  "Datos de la consulta"
// @Success      201   {object}  dto.ConsultationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/consultations/{kind} [post]
func (h *ConsultationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateConsultationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.wf.Create(c.UserContext(), entity.TransferKind(param(c, "kind")), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar consulta
// @Tags         consultations
// @Accept       json
// @Produce      json
// @Param        kind  path  string                         true  "derivation | referral"
// @Param        id    path  string                         true  "ID de la consulta"
// @Param        body  body  dto.UpdateConsultationRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ConsultationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/consultations/{kind}/{id} [put]
func (h *ConsultationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateConsultationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.wf.Update(c.UserContext(), entity.TransferKind(param(c, "kind")), param(c, "id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar consulta
// @Description  Devuelve al stock lo dispensado contra la consulta y elimina esas líneas.
// @Tags         consultations
// @Param        kind  path  string  true  "derivation | referral"
// @Param        id    path  string  true  "ID de la consulta"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/consultations/{kind}/{id} [delete]
func (h *ConsultationHandler) Delete(c *fiber.Ctx) error {
	if err := h.wf.Delete(c.UserContext(), entity.TransferKind(param(c, "kind")), param(c, "id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener consulta
// @Tags         consultations
// @Produce      json
// @Param        kind  path  string  true  "derivation | referral"
// @Param        id    path  string  true  "ID de la consulta"
// @Success      200   {object}  dto.ConsultationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/consultations/{kind}/{id} [get]
func (h *ConsultationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.wf.Get(c.UserContext(), entity.TransferKind(param(c, "kind")), param(c, "id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
