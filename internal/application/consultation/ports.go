package consultation

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios del flujo de consultas.
// Incluye stock y dispensaciones porque eliminar una consulta libera sus medicamentos.
type TxRunner interface {
	RunConsultation(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
		dispRepo repository.DispensationRepository,
		stockRepo repository.StockRepository,
		staff repository.StaffDirectory,
	) error) error
}
