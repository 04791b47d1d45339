package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockRequest body para POST /api/stock.
type CreateStockRequest struct {
	DepartmentID string `json:"department_id"`
	MedicationID string `json:"medication_id"`
	Quantity     int    `json:"quantity"`
	MinQuantity  int    `json:"min_quantity"`
	MaxQuantity  int    `json:"max_quantity"`
}

// UpdateThresholdsRequest body para PATCH /api/stock/thresholds.
type UpdateThresholdsRequest struct {
	DepartmentID string `json:"department_id"`
	MedicationID string `json:"medication_id"`
	MinQuantity  int    `json:"min_quantity"`
	MaxQuantity  int    `json:"max_quantity"`
}

// RestockRequest body para POST /api/stock/restock.
type RestockRequest struct {
	DepartmentID string `json:"department_id"`
	MedicationID string `json:"medication_id"`
	Amount       int    `json:"amount"`
}

// StockResponse estado de un contador de stock.
type StockResponse struct {
	DepartmentID string    `json:"department_id"`
	MedicationID string    `json:"medication_id"`
	Quantity     int       `json:"quantity"`
	MinQuantity  int       `json:"min_quantity"`
	MaxQuantity  int       `json:"max_quantity"`
	BelowMinimum bool      `json:"below_minimum"`
	AboveMaximum bool      `json:"above_maximum"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockAlertDTO fila del reporte de umbrales.
type StockAlertDTO struct {
	DepartmentID   string          `json:"department_id"`
	MedicationID   string          `json:"medication_id"`
	Quantity       int             `json:"quantity"`
	MinQuantity    int             `json:"min_quantity"`
	MaxQuantity    int             `json:"max_quantity"`
	FillPct        decimal.Decimal `json:"fill_pct"`            // Quantity / MaxQuantity * 100
	SuggestedOrder int             `json:"suggested_order_qty"` // MaxQuantity - Quantity (0 si excede)
}

// ThresholdReportDTO registros fuera de umbrales (informativo, no bloquea operaciones).
type ThresholdReportDTO struct {
	BelowMinimum []StockAlertDTO `json:"below_minimum"`
	AboveMaximum []StockAlertDTO `json:"above_maximum"`
}
