package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por departamento+medicamento.
// Las escrituras se usan dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get lee sin bloquear. Devuelve domain.ErrStockNotFound si no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	Create(ctx context.Context, stock *entity.StockRecord) error
	// Save persiste Quantity y los umbrales de un registro existente.
	Save(ctx context.Context, stock *entity.StockRecord) error
	// ListBelowMinimum y ListAboveMaximum son filtros de lectura informativos; departmentID vacío = todos.
	ListBelowMinimum(ctx context.Context, departmentID string) ([]*entity.StockLevel, error)
	ListAboveMaximum(ctx context.Context, departmentID string) ([]*entity.StockLevel, error)
}
