package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// StockHandler maneja el abastecimiento de departamentos y el reporte de umbrales.
type StockHandler struct {
	stock  *inventory.StockUseCase
	report *inventory.ThresholdReportUseCase
	log    *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockUseCase, report *inventory.ThresholdReportUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{stock: stock, report: report, log: log}
}

// Create godoc
// @Summary      Abastecer un departamento con un medicamento
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "department_id, medication_id, quantity, min_quantity, max_quantity"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.CreateStock(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateThresholds godoc
// @Summary      Cambiar umbrales mínimo y máximo
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateThresholdsRequest  true  "department_id, medication_id, min_quantity, max_quantity"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/thresholds [patch]
func (h *StockHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.UpdateThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.UpdateThresholds(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Ingreso de medicamento desde el almacén central
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "department_id, medication_id, amount"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/restock [post]
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.Restock(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte de umbrales
// @Description  Registros bajo mínimo y sobre máximo con cantidad sugerida de pedido y porcentaje de llenado.
// @Tags         stock
// @Produce      json
// @Param        department_id  query  string  false  "Filtrar por departamento. Vacío = todos."
// @Success      200  {object}  dto.ThresholdReportDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/report [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	out, err := h.report.GenerateReport(c.UserContext(), query(c, "department_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
