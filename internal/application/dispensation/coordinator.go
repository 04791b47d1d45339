package dispensation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// Coordinator crea, modifica y elimina dispensaciones manteniendo el stock del departamento en sincronía.
// Cada operación es una única transacción: la línea y el contador se confirman juntos o no se confirman.
type Coordinator struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewCoordinator construye el coordinador.
func NewCoordinator(txRunner TxRunner, log *logger.Logger) *Coordinator {
	return &Coordinator{txRunner: txRunner, log: log.Component("dispensation"), now: time.Now}
}

// Create resuelve el departamento del contexto, reserva la cantidad y guarda la línea.
// Errores de negocio: domain.ErrInvalidInput, domain.ErrContextNotFound, *domain.DepartmentMismatchError,
// domain.ErrStockNotFound, *domain.InsufficientStockError. Cualquier otro fallo es *domain.PersistenceError.
func (c *Coordinator) Create(ctx context.Context, in dto.CreateDispensationRequest) (*dto.DispensationResponse, error) {
	dctx := entity.DispensationContext{Kind: entity.ContextKind(in.ContextKind), ID: in.ContextID}
	if !dctx.Kind.Valid() || dctx.ID == "" || in.MedicationID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := c.now()
	d := &entity.Dispensation{
		ID:           uuid.New().String(),
		Context:      dctx,
		MedicationID: in.MedicationID,
		Quantity:     in.Quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := c.txRunner.RunDispensation(ctx, func(
		stockRepo repository.StockRepository,
		dispRepo repository.DispensationRepository,
		contexts repository.ContextResolver,
		staff repository.StaffDirectory,
	) error {
		resolved, err := resolveDepartment(ctx, contexts, staff, dctx)
		if err != nil {
			return err
		}
		key := entity.StockKey{DepartmentID: resolved.DepartmentID, MedicationID: d.MedicationID}
		if _, err := inventory.NewStockLedger(stockRepo).Reserve(ctx, key, d.Quantity); err != nil {
			return err
		}
		return dispRepo.Create(ctx, d)
	})
	if err != nil {
		return nil, domain.AsPersistence("crear dispensación", err)
	}
	return toDispensationResponse(d), nil
}

// Update cambia la cantidad y/o el contexto de una línea.
// Mismo departamento: se aplica solo el delta; sin cambios no se escribe nada.
// Otro departamento: se libera en el origen y se reserva en el destino dentro de la misma transacción.
func (c *Coordinator) Update(ctx context.Context, id string, in dto.UpdateDispensationRequest) (*dto.DispensationResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if (in.ContextKind == "") != (in.ContextID == "") {
		return nil, domain.ErrInvalidInput
	}
	var newCtx *entity.DispensationContext
	if in.ContextKind != "" {
		nc := entity.DispensationContext{Kind: entity.ContextKind(in.ContextKind), ID: in.ContextID}
		if !nc.Kind.Valid() {
			return nil, domain.ErrInvalidInput
		}
		newCtx = &nc
	}

	var out *entity.Dispensation
	err := c.txRunner.RunDispensation(ctx, func(
		stockRepo repository.StockRepository,
		dispRepo repository.DispensationRepository,
		contexts repository.ContextResolver,
		staff repository.StaffDirectory,
	) error {
		d, err := dispRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		out = d

		oldAmount, newAmount := d.Quantity, d.Quantity
		if in.Quantity != nil {
			newAmount = *in.Quantity
		}
		oldCtx, targetCtx := d.Context, d.Context
		if newCtx != nil {
			targetCtx = *newCtx
		}
		if oldAmount == newAmount && oldCtx == targetCtx {
			return nil
		}

		oldResolved, err := contexts.Resolve(ctx, oldCtx)
		if err != nil {
			return err
		}
		oldKey := entity.StockKey{DepartmentID: oldResolved.DepartmentID, MedicationID: d.MedicationID}
		ledger := inventory.NewStockLedger(stockRepo)

		if oldCtx == targetCtx {
			if _, err := ledger.AdjustForUpdate(ctx, oldKey, oldAmount, newAmount); err != nil {
				return err
			}
		} else {
			newResolved, err := resolveDepartment(ctx, contexts, staff, targetCtx)
			if err != nil {
				return err
			}
			newKey := entity.StockKey{DepartmentID: newResolved.DepartmentID, MedicationID: d.MedicationID}
			if err := ledger.Move(ctx, oldKey, oldAmount, newKey, newAmount); err != nil {
				return err
			}
		}

		d.Quantity = newAmount
		d.Context = targetCtx
		d.UpdatedAt = c.now()
		return dispRepo.Update(ctx, d)
	})
	if err != nil {
		return nil, domain.AsPersistence("actualizar dispensación", err)
	}
	return toDispensationResponse(out), nil
}

// Delete elimina la línea y devuelve su cantidad al stock.
// Si el registro de stock o la cadena de contexto ya no existen, la línea se elimina igualmente
// y se registra un aviso.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	err := c.txRunner.RunDispensation(ctx, func(
		stockRepo repository.StockRepository,
		dispRepo repository.DispensationRepository,
		contexts repository.ContextResolver,
		_ repository.StaffDirectory,
	) error {
		d, err := dispRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		resolved, err := contexts.Resolve(ctx, d.Context)
		switch {
		case errors.Is(err, domain.ErrContextNotFound):
			c.log.Warn().Str("dispensation_id", d.ID).Str("context_kind", string(d.Context.Kind)).
				Str("context_id", d.Context.ID).Msg("contexto inexistente; se elimina sin devolver stock")
		case err != nil:
			return err
		default:
			key := entity.StockKey{DepartmentID: resolved.DepartmentID, MedicationID: d.MedicationID}
			if _, err := inventory.NewStockLedger(stockRepo).Release(ctx, key, d.Quantity); err != nil {
				if !errors.Is(err, domain.ErrStockNotFound) {
					return err
				}
				c.log.Warn().Str("dispensation_id", d.ID).Str("department_id", key.DepartmentID).
					Str("medication_id", key.MedicationID).Int("quantity", d.Quantity).
					Msg("registro de stock inexistente; se elimina sin devolver stock")
			}
		}
		return dispRepo.Delete(ctx, d.ID)
	})
	return domain.AsPersistence("eliminar dispensación", err)
}

// Get obtiene una línea por ID.
func (c *Coordinator) Get(ctx context.Context, id string) (*dto.DispensationResponse, error) {
	var out *entity.Dispensation
	err := c.txRunner.RunDispensation(ctx, func(
		_ repository.StockRepository,
		dispRepo repository.DispensationRepository,
		_ repository.ContextResolver,
		_ repository.StaffDirectory,
	) error {
		d, err := dispRepo.GetByID(ctx, id)
		out = d
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("obtener dispensación", err)
	}
	return toDispensationResponse(out), nil
}

// ListByContext lista las líneas de una consulta, urgencia o solicitud de almacén.
func (c *Coordinator) ListByContext(ctx context.Context, kind, contextID string) ([]*dto.DispensationResponse, error) {
	dctx := entity.DispensationContext{Kind: entity.ContextKind(kind), ID: contextID}
	if !dctx.Kind.Valid() || dctx.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	var lines []*entity.Dispensation
	err := c.txRunner.RunDispensation(ctx, func(
		_ repository.StockRepository,
		dispRepo repository.DispensationRepository,
		_ repository.ContextResolver,
		_ repository.StaffDirectory,
	) error {
		var err error
		lines, err = dispRepo.ListByContext(ctx, dctx)
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence("listar dispensaciones", err)
	}
	out := make([]*dto.DispensationResponse, 0, len(lines))
	for _, d := range lines {
		out = append(out, toDispensationResponse(d))
	}
	return out, nil
}

// resolveDepartment resuelve el departamento del contexto y, si es una consulta, vuelve a comprobar
// que su personal pertenezca al destino del traslado.
func resolveDepartment(
	ctx context.Context,
	contexts repository.ContextResolver,
	staff repository.StaffDirectory,
	dctx entity.DispensationContext,
) (*repository.ResolvedContext, error) {
	resolved, err := contexts.Resolve(ctx, dctx)
	if err != nil {
		return nil, err
	}
	if dctx.Kind.IsConsultation() {
		c := resolved.Consultation
		err := consultation.NewIdentityValidator(staff).
			ValidateConsultationStaff(ctx, resolved.Transfer, c.DoctorID, c.DepartmentHeadID)
		if err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func toDispensationResponse(d *entity.Dispensation) *dto.DispensationResponse {
	return &dto.DispensationResponse{
		ID:           d.ID,
		ContextKind:  string(d.Context.Kind),
		ContextID:    d.Context.ID,
		MedicationID: d.MedicationID,
		Quantity:     d.Quantity,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
