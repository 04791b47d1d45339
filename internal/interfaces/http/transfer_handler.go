package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/transfer"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// TransferHandler maneja derivaciones y remisiones.
type TransferHandler struct {
	uc  *transfer.UseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// CreateDerivation godoc
// @Summary      Registrar derivación entre departamentos
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDerivationRequest  true  "Origen, destino, paciente y fecha"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers/derivations [post]
func (h *TransferHandler) CreateDerivation(c *fiber.Ctx) error {
	var in dto.CreateDerivationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateDerivation(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateReferral godoc
// @Summary      Registrar remisión desde un puesto externo
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReferralRequest  true  "Puesto externo, destino, paciente y fecha"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers/referrals [post]
func (h *TransferHandler) CreateReferral(c *fiber.Ctx) error {
	var in dto.CreateReferralRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateReferral(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Produce      json
// @Param        kind  path  string  true  "derivation | referral"
// @Param        id    path  string  true  "ID del traslado"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers/{kind}/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), entity.TransferKind(param(c, "kind")), param(c, "id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar traslado
// @Description  Se rechaza mientras el traslado tenga una consulta registrada.
// @Tags         transfers
// @Param        kind  path  string  true  "derivation | referral"
// @Param        id    path  string  true  "ID del traslado"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{kind}/{id} [delete]
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), entity.TransferKind(param(c, "kind")), param(c, "id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
