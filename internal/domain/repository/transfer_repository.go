package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// TransferRepository define el puerto para derivaciones y remisiones.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, kind entity.TransferKind, id string) (*entity.Transfer, error)
	Delete(ctx context.Context, kind entity.TransferKind, id string) error
}
