package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// ConsultationRepository define el puerto para consultas de derivación y de remisión.
type ConsultationRepository interface {
	Create(ctx context.Context, c *entity.Consultation) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, kind entity.TransferKind, id string) (*entity.Consultation, error)
	// GetByTransfer devuelve la consulta del traslado o (nil, nil) si aún no tiene.
	GetByTransfer(ctx context.Context, kind entity.TransferKind, transferID string) (*entity.Consultation, error)
	Update(ctx context.Context, c *entity.Consultation) error
	Delete(ctx context.Context, kind entity.TransferKind, id string) error
}
