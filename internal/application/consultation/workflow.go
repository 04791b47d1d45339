package consultation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// Workflow une un traslado con su consulta: valida el personal contra el destino antes de persistir.
type Workflow struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewWorkflow construye el flujo de consultas.
func NewWorkflow(txRunner TxRunner, log *logger.Logger) *Workflow {
	return &Workflow{txRunner: txRunner, log: log.Component("consultation")}
}

// Create registra la consulta de un traslado. Un traslado admite una sola consulta (domain.ErrConflict).
func (w *Workflow) Create(ctx context.Context, kind entity.TransferKind, in dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	if !kind.Valid() || in.TransferID == "" || in.DoctorID == "" || in.DepartmentHeadID == "" {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		return nil, domain.ErrInvalidInput
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	c := &entity.Consultation{
		ID:               uuid.New().String(),
		Kind:             kind,
		TransferID:       in.TransferID,
		Diagnosis:        in.Diagnosis,
		Date:             date,
		DoctorID:         in.DoctorID,
		DepartmentHeadID: in.DepartmentHeadID,
	}

	err := w.txRunner.RunConsultation(ctx, func(
		transferRepo repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
		_ repository.DispensationRepository,
		_ repository.StockRepository,
		staff repository.StaffDirectory,
	) error {
		transfer, err := transferRepo.GetByID(ctx, kind, in.TransferID)
		if err != nil {
			return err
		}
		existing, err := consultRepo.GetByTransfer(ctx, kind, in.TransferID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrConflict
		}
		if err := NewIdentityValidator(staff).ValidateConsultationStaff(ctx, transfer, c.DoctorID, c.DepartmentHeadID); err != nil {
			return err
		}
		return consultRepo.Create(ctx, c)
	})
	if err != nil {
		return nil, domain.AsPersistence("crear consulta", err)
	}
	return toConsultationResponse(c), nil
}

// Update modifica la consulta. Si cambia el doctor o el jefe de departamento se vuelve a validar
// contra el destino leído del traslado actual.
func (w *Workflow) Update(ctx context.Context, kind entity.TransferKind, id string, in dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error) {
	if !kind.Valid() || id == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Diagnosis != nil && strings.TrimSpace(*in.Diagnosis) == "" {
		return nil, domain.ErrInvalidInput
	}

	var out *entity.Consultation
	err := w.txRunner.RunConsultation(ctx, func(
		transferRepo repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
		_ repository.DispensationRepository,
		_ repository.StockRepository,
		staff repository.StaffDirectory,
	) error {
		c, err := consultRepo.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}

		staffChanged := false
		if in.DoctorID != nil && *in.DoctorID != c.DoctorID {
			c.DoctorID = *in.DoctorID
			staffChanged = true
		}
		if in.DepartmentHeadID != nil && *in.DepartmentHeadID != c.DepartmentHeadID {
			c.DepartmentHeadID = *in.DepartmentHeadID
			staffChanged = true
		}
		if in.Diagnosis != nil {
			c.Diagnosis = *in.Diagnosis
		}
		if in.Date != nil {
			c.Date = *in.Date
		}

		if staffChanged {
			transfer, err := transferRepo.GetByID(ctx, kind, c.TransferID)
			if err != nil {
				return err
			}
			if err := NewIdentityValidator(staff).ValidateConsultationStaff(ctx, transfer, c.DoctorID, c.DepartmentHeadID); err != nil {
				return err
			}
		}
		out = c
		return consultRepo.Update(ctx, c)
	})
	if err != nil {
		return nil, domain.AsPersistence("actualizar consulta", err)
	}
	return toConsultationResponse(out), nil
}

// Delete elimina la consulta y, en la misma transacción, devuelve al stock del departamento destino
// los medicamentos dispensados contra ella y borra esas líneas.
// Orden de bloqueo: líneas, consulta y por último stock agrupado por (departamento, medicamento),
// el mismo que siguen las dispensaciones.
// Un registro de stock o un traslado desaparecidos no bloquean la eliminación: se registra un aviso.
func (w *Workflow) Delete(ctx context.Context, kind entity.TransferKind, id string) error {
	if !kind.Valid() || id == "" {
		return domain.ErrInvalidInput
	}
	err := w.txRunner.RunConsultation(ctx, func(
		transferRepo repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
		dispRepo repository.DispensationRepository,
		stockRepo repository.StockRepository,
		_ repository.StaffDirectory,
	) error {
		c, err := consultRepo.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		lines, err := dispRepo.ListByContext(ctx, entity.ContextForConsultation(c))
		if err != nil {
			return err
		}

		departmentID := ""
		transfer, err := transferRepo.GetByID(ctx, kind, c.TransferID)
		switch {
		case err == nil:
			departmentID = transfer.DestinationDepartmentID
		case errors.Is(err, domain.ErrNotFound):
			w.log.Warn().Str("consultation_id", id).Str("transfer_id", c.TransferID).
				Msg("traslado inexistente; las dispensaciones se eliminan sin devolver stock")
		default:
			return err
		}

		amounts := make(map[entity.StockKey]int, len(lines))
		for _, d := range lines {
			if err := dispRepo.Delete(ctx, d.ID); err != nil {
				return err
			}
			if departmentID != "" {
				amounts[entity.StockKey{DepartmentID: departmentID, MedicationID: d.MedicationID}] += d.Quantity
			}
		}
		if err := consultRepo.Delete(ctx, kind, id); err != nil {
			return err
		}

		missing, err := inventory.NewStockLedger(stockRepo).ReleaseMany(ctx, amounts)
		if err != nil {
			return err
		}
		for _, k := range missing {
			w.log.Warn().Str("consultation_id", id).Str("department_id", k.DepartmentID).
				Str("medication_id", k.MedicationID).Int("quantity", amounts[k]).
				Msg("registro de stock inexistente; no se devuelve la cantidad")
		}
		return nil
	})
	return domain.AsPersistence("eliminar consulta", err)
}

// Get obtiene una consulta por tipo e ID.
func (w *Workflow) Get(ctx context.Context, kind entity.TransferKind, id string) (*dto.ConsultationResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Consultation
	err := w.txRunner.RunConsultation(ctx, func(
		_ repository.TransferRepository,
		consultRepo repository.ConsultationRepository,
		_ repository.DispensationRepository,
		_ repository.StockRepository,
		_ repository.StaffDirectory,
	) error {
		c, err := consultRepo.GetByID(ctx, kind, id)
		out = c
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("obtener consulta", err)
	}
	return toConsultationResponse(out), nil
}

func toConsultationResponse(c *entity.Consultation) *dto.ConsultationResponse {
	return &dto.ConsultationResponse{
		ID:               c.ID,
		Kind:             string(c.Kind),
		TransferID:       c.TransferID,
		Diagnosis:        c.Diagnosis,
		Date:             c.Date,
		DoctorID:         c.DoctorID,
		DepartmentHeadID: c.DepartmentHeadID,
	}
}
