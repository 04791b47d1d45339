package transfer

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios de traslados y consultas.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
	) error) error
}
