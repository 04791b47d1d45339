package dispensation

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios de dispensación.
// La línea de dispensación y el contador de stock se confirman o se descartan juntos.
type TxRunner interface {
	RunDispensation(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		dispRepo repository.DispensationRepository,
		contexts repository.ContextResolver,
		staff repository.StaffDirectory,
	) error) error
}
