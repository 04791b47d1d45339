package inventory

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio de stock atado a esa tx.
// Garantiza atomicidad para el libro de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}
