package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// Códigos de error devueltos en dto.ErrorResponse.
const (
	CodeInvalidBody        = "INVALID_BODY"
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeStockNotFound      = "STOCK_NOT_FOUND"
	CodeContextNotFound    = "CONTEXT_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeDepartmentMismatch = "DEPARTMENT_MISMATCH"
	CodePersistence        = "PERSISTENCE_FAILURE"
)

// respondError traduce un error de la capa de aplicación a status + dto.ErrorResponse.
// Los fallos de persistencia se registran y nunca exponen el error interno.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := fiber.StatusInternalServerError, CodePersistence
	msg := "no se pudo completar la operación"

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, CodeValidation, "datos inválidos"
	case errors.Is(err, domain.ErrStockNotFound):
		status, code, msg = fiber.StatusNotFound, CodeStockNotFound, "el departamento no tiene registro de stock para el medicamento"
	case errors.Is(err, domain.ErrContextNotFound):
		status, code, msg = fiber.StatusNotFound, CodeContextNotFound, "contexto de dispensación no encontrado"
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, CodeNotFound, "recurso no encontrado"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code, msg = fiber.StatusConflict, CodeInsufficientStock, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, msg = fiber.StatusConflict, CodeConflict, "conflicto con el estado actual"
	case errors.Is(err, domain.ErrDepartmentMismatch):
		status, code, msg = fiber.StatusUnprocessableEntity, CodeDepartmentMismatch, err.Error()
	default:
		log.Error().Err(err).Str("request_id", GetRequestID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("fallo de persistencia")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido"})
}

// param y query copian el valor: fasthttp reutiliza el buffer de la petición.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func query(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Query(name))
}
