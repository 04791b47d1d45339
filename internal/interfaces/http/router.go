package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/transfer"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Dispensations   *dispensation.Coordinator
	Consultations   *consultation.Workflow
	Transfers       *transfer.UseCase
	Stock           *inventory.StockUseCase
	ThresholdReport *inventory.ThresholdReportUseCase
	Log             *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")
	api := app.Group("/api", RequestID(), AccessLog(log))

	dispensations := api.Group("/dispensations")
	dispHandler := NewDispensationHandler(deps.Dispensations, log)
	dispensations.Post("/", dispHandler.Create)
	dispensations.Get("/", dispHandler.List)
	dispensations.Get("/:id", dispHandler.GetByID)
	dispensations.Put("/:id", dispHandler.Update)
	dispensations.Delete("/:id", dispHandler.Delete)

	consultations := api.Group("/consultations")
	consHandler := NewConsultationHandler(deps.Consultations, log)
	consultations.Post("/:kind", consHandler.Create)
	consultations.Get("/:kind/:id", consHandler.GetByID)
	consultations.Put("/:kind/:id", consHandler.Update)
	consultations.Delete("/:kind/:id", consHandler.Delete)

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers, log)
	transfers.Post("/derivations", transferHandler.CreateDerivation)
	transfers.Post("/referrals", transferHandler.CreateReferral)
	transfers.Get("/:kind/:id", transferHandler.GetByID)
	transfers.Delete("/:kind/:id", transferHandler.Delete)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Stock, deps.ThresholdReport, log)
	stock.Post("/", stockHandler.Create)
	stock.Patch("/thresholds", stockHandler.UpdateThresholds)
	stock.Post("/restock", stockHandler.Restock)
	stock.Get("/report", stockHandler.Report)
}
