package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// UseCase registra derivaciones y remisiones. Un traslado es inmutable: solo se crea o se elimina.
type UseCase struct {
	txRunner TxRunner
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner) *UseCase {
	return &UseCase{txRunner: txRunner}
}

// CreateDerivation registra el paso de un caso de un departamento a otro.
func (uc *UseCase) CreateDerivation(ctx context.Context, in dto.CreateDerivationRequest) (*dto.TransferResponse, error) {
	if in.SourceDepartmentID == "" || in.DestinationDepartmentID == "" || in.PatientID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.SourceDepartmentID == in.DestinationDepartmentID {
		return nil, domain.ErrInvalidInput
	}
	return uc.create(ctx, &entity.Transfer{
		Kind:                    entity.TransferDerivation,
		SourceDepartmentID:      in.SourceDepartmentID,
		DestinationDepartmentID: in.DestinationDepartmentID,
		PatientID:               in.PatientID,
		Date:                    in.Date,
	})
}

// CreateReferral registra la llegada de un caso desde un puesto externo.
func (uc *UseCase) CreateReferral(ctx context.Context, in dto.CreateReferralRequest) (*dto.TransferResponse, error) {
	if in.ExternalPostID == "" || in.DestinationDepartmentID == "" || in.PatientID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.create(ctx, &entity.Transfer{
		Kind:                    entity.TransferReferral,
		ExternalPostID:          in.ExternalPostID,
		DestinationDepartmentID: in.DestinationDepartmentID,
		PatientID:               in.PatientID,
		Date:                    in.Date,
	})
}

func (uc *UseCase) create(ctx context.Context, t *entity.Transfer) (*dto.TransferResponse, error) {
	t.ID = uuid.New().String()
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	err := uc.txRunner.RunTransfer(ctx, func(transferRepo repository.TransferRepository, _ repository.ConsultationRepository) error {
		return transferRepo.Create(ctx, t)
	})
	if err != nil {
		return nil, domain.AsPersistence("crear traslado", err)
	}
	return toTransferResponse(t), nil
}

// Get obtiene un traslado por tipo e ID.
func (uc *UseCase) Get(ctx context.Context, kind entity.TransferKind, id string) (*dto.TransferResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Transfer
	err := uc.txRunner.RunTransfer(ctx, func(transferRepo repository.TransferRepository, _ repository.ConsultationRepository) error {
		t, err := transferRepo.GetByID(ctx, kind, id)
		out = t
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("obtener traslado", err)
	}
	return toTransferResponse(out), nil
}

// Delete elimina el traslado. Se rechaza con domain.ErrConflict mientras tenga una consulta.
func (uc *UseCase) Delete(ctx context.Context, kind entity.TransferKind, id string) error {
	if !kind.Valid() || id == "" {
		return domain.ErrInvalidInput
	}
	err := uc.txRunner.RunTransfer(ctx, func(transferRepo repository.TransferRepository, consultRepo repository.ConsultationRepository) error {
		if _, err := transferRepo.GetByID(ctx, kind, id); err != nil {
			return err
		}
		c, err := consultRepo.GetByTransfer(ctx, kind, id)
		if err != nil {
			return err
		}
		if c != nil {
			return domain.ErrConflict
		}
		return transferRepo.Delete(ctx, kind, id)
	})
	return domain.AsPersistence("eliminar traslado", err)
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:                      t.ID,
		Kind:                    string(t.Kind),
		SourceDepartmentID:      t.SourceDepartmentID,
		ExternalPostID:          t.ExternalPostID,
		DestinationDepartmentID: t.DestinationDepartmentID,
		PatientID:               t.PatientID,
		Date:                    t.Date,
	}
}
