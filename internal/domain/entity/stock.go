package entity

import (
	"time"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

// StockKey identifica un contador de stock: un medicamento dentro de un departamento.
type StockKey struct {
	DepartmentID string
	MedicationID string
}

// Less ordena claves por departamento y luego por medicamento (orden de bloqueo).
func (k StockKey) Less(o StockKey) bool {
	if k.DepartmentID != o.DepartmentID {
		return k.DepartmentID < o.DepartmentID
	}
	return k.MedicationID < o.MedicationID
}

// StockRecord es el contador de existencias de un medicamento en un departamento.
// MinQuantity y MaxQuantity son umbrales informativos: superarlos se reporta, no se rechaza.
// Quantity solo se modifica con Reserve, Release y Adjust.
type StockRecord struct {
	DepartmentID string
	MedicationID string
	Quantity     int
	MinQuantity  int
	MaxQuantity  int
	UpdatedAt    time.Time
}

// StockLevel es un registro leído para reportes junto con su porcentaje de llenado
// (Quantity / MaxQuantity * 100, dos decimales; cero sin máximo).
type StockLevel struct {
	StockRecord
	FillPct decimal.Decimal
}

// Key devuelve la clave (departamento, medicamento) del registro.
func (s *StockRecord) Key() StockKey {
	return StockKey{DepartmentID: s.DepartmentID, MedicationID: s.MedicationID}
}

// Reserve descuenta amount de las existencias. Rechaza la operación completa si dejaría Quantity negativo.
func (s *StockRecord) Reserve(amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	if amount > s.Quantity {
		return &domain.InsufficientStockError{
			DepartmentID: s.DepartmentID,
			MedicationID: s.MedicationID,
			Available:    s.Quantity,
			Requested:    amount,
		}
	}
	s.Quantity -= amount
	return nil
}

// Release devuelve amount a las existencias.
func (s *StockRecord) Release(amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	s.Quantity += amount
	return nil
}

// Adjust aplica newAmount - oldAmount: delta positivo reserva, negativo libera.
// Devuelve false si el delta es cero y no hay nada que persistir.
func (s *StockRecord) Adjust(oldAmount, newAmount int) (bool, error) {
	delta := newAmount - oldAmount
	switch {
	case delta > 0:
		return true, s.Reserve(delta)
	case delta < 0:
		return true, s.Release(-delta)
	}
	return false, nil
}

// IsBelowMinimum indica si las existencias están por debajo del umbral mínimo.
func (s *StockRecord) IsBelowMinimum() bool {
	return s.Quantity < s.MinQuantity
}

// IsAboveMaximum indica si las existencias superan el umbral máximo.
func (s *StockRecord) IsAboveMaximum() bool {
	return s.Quantity > s.MaxQuantity
}

// ValidateThresholds comprueba que los umbrales sean coherentes.
func ValidateThresholds(minQuantity, maxQuantity int) error {
	if minQuantity < 0 || maxQuantity < 0 || minQuantity > maxQuantity {
		return domain.ErrInvalidInput
	}
	return nil
}
