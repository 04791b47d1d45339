package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// DispensationHandler maneja las peticiones HTTP de dispensaciones.
type DispensationHandler struct {
	coord *dispensation.Coordinator
	log   *logger.Logger
}

// NewDispensationHandler construye el handler.
func NewDispensationHandler(coord *dispensation.Coordinator, log *logger.Logger) *DispensationHandler {
	return &DispensationHandler{coord: coord, log: log}
}

// Create godoc
// @Summary      Dispensar medicamento
// @Description  Descuenta la cantidad del stock del departamento resuelto desde el contexto y guarda la línea.
// @Tags         dispensations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDispensationRequest  true  "context_kind, context_id, medication_id, quantity"
// @Success      201   {object}  dto.DispensationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/dispensations [post]
func (h *DispensationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDispensationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.coord.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar dispensación
// @Description  Cambia cantidad y/o contexto; el stock se ajusta por el delta o se mueve entre departamentos.
// @Tags         dispensations
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la dispensación"
// @Param        body  body  dto.UpdateDispensationRequest  true  "quantity, context_kind, context_id"
// @Success      200   {object}  dto.DispensationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispensations/{id} [put]
func (h *DispensationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDispensationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.coord.Update(c.UserContext(), param(c, "id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar dispensación
// @Description  Elimina la línea y devuelve su cantidad al stock del departamento.
// @Tags         dispensations
// @Param        id   path  string  true  "ID de la dispensación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispensations/{id} [delete]
func (h *DispensationHandler) Delete(c *fiber.Ctx) error {
	if err := h.coord.Delete(c.UserContext(), param(c, "id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener dispensación
// @Tags         dispensations
// @Produce      json
// @Param        id   path  string  true  "ID de la dispensación"
// @Success      200  {object}  dto.DispensationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispensations/{id} [get]
func (h *DispensationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.coord.Get(c.UserContext(), param(c, "id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar dispensaciones de un contexto
// @Tags         dispensations
// @Produce      json
// @Param        context_kind  query  string  true  "derivation | referral | emergency | request"
// @Param        context_id    query  string  true  "ID del contexto"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/dispensations [get]
func (h *DispensationHandler) List(c *fiber.Ctx) error {
	list, err := h.coord.ListByContext(c.UserContext(), query(c, "context_kind"), query(c, "context_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":         len(list),
		"dispensations": list,
	})
}
