package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// DispensationRepository define el puerto de persistencia para líneas de dispensación.
type DispensationRepository interface {
	Create(ctx context.Context, d *entity.Dispensation) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Dispensation, error)
	// GetForUpdate bloquea la línea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Dispensation, error)
	Update(ctx context.Context, d *entity.Dispensation) error
	Delete(ctx context.Context, id string) error
	ListByContext(ctx context.Context, c entity.DispensationContext) ([]*entity.Dispensation, error)
}
