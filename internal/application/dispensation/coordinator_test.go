package dispensation_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/testutil/memstore"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	depA = "dep-a" // origen de la derivación, urgencias
	depB = "dep-b" // destino de la derivación
	med  = "med-1"
)

var (
	stockA = entity.StockKey{DepartmentID: depA, MedicationID: med}
	stockB = entity.StockKey{DepartmentID: depB, MedicationID: med}
)

// fixture: derivación dep-a → dep-b con consulta válida "cons-1", urgencia "em-1" en dep-a,
// solicitud de almacén "req-1" en dep-b y 10 unidades en cada departamento.
func fixture(t *testing.T) (*memstore.Store, *dispensation.Coordinator) {
	t.Helper()
	store := memstore.New()
	store.PutDoctor(entity.Doctor{ID: "doc-b", DepartmentID: depB})
	store.PutDoctor(entity.Doctor{ID: "doc-a", DepartmentID: depA})
	store.PutDepartmentHead(entity.DepartmentHead{ID: "head-b", DoctorID: "doc-b", DepartmentID: depB})
	store.PutTransfer(entity.Transfer{ID: "der-1", Kind: entity.TransferDerivation, SourceDepartmentID: depA, DestinationDepartmentID: depB})
	store.PutConsultation(entity.Consultation{
		ID: "cons-1", Kind: entity.TransferDerivation, TransferID: "der-1", Diagnosis: "x", DoctorID: "doc-b", DepartmentHeadID: "head-b",
	})
	store.PutEmergency(entity.EmergencyCare{ID: "em-1", DepartmentID: depA})
	store.PutWarehouseRequest(entity.WarehouseRequest{ID: "req-1", DepartmentID: depB, Status: "pending"})
	store.PutStock(entity.StockRecord{DepartmentID: depA, MedicationID: med, Quantity: 10, MaxQuantity: 50})
	store.PutStock(entity.StockRecord{DepartmentID: depB, MedicationID: med, Quantity: 10, MaxQuantity: 50})
	return store, dispensation.NewCoordinator(store, logger.Nop())
}

func qty(t *testing.T, store *memstore.Store, key entity.StockKey) int {
	t.Helper()
	rec, ok := store.Stock(key)
	require.True(t, ok)
	return rec.Quantity
}

func intPtr(n int) *int { return &n }

func onConsultation(q int) dto.CreateDispensationRequest {
	return dto.CreateDispensationRequest{ContextKind: "derivation", ContextID: "cons-1", MedicationID: med, Quantity: q}
}

func TestCoordinator_Create_ReservesDestinationStock(t *testing.T) {
	store, coord := fixture(t)

	out, err := coord.Create(context.Background(), onConsultation(7))
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, 7, out.Quantity)
	assert.Equal(t, "derivation", out.ContextKind)

	assert.Equal(t, 3, qty(t, store, stockB))
	assert.Equal(t, 10, qty(t, store, stockA), "el origen de la derivación no se toca")
}

func TestCoordinator_Create_DirectContexts(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	_, err := coord.Create(ctx, dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: med, Quantity: 2})
	require.NoError(t, err)
	_, err = coord.Create(ctx, dto.CreateDispensationRequest{ContextKind: "request", ContextID: "req-1", MedicationID: med, Quantity: 5})
	require.NoError(t, err)

	assert.Equal(t, 8, qty(t, store, stockA))
	assert.Equal(t, 5, qty(t, store, stockB))
}

func TestCoordinator_Create_Insufficient(t *testing.T) {
	store, coord := fixture(t)

	_, err := coord.Create(context.Background(), onConsultation(11))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Available)
	assert.Equal(t, 11, insufficient.Requested)

	assert.Equal(t, 10, qty(t, store, stockB))
	assert.Empty(t, store.Dispensations())
}

func TestCoordinator_Create_Rejections(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   dto.CreateDispensationRequest
		want error
	}{
		{"zero quantity", dto.CreateDispensationRequest{ContextKind: "derivation", ContextID: "cons-1", MedicationID: med}, domain.ErrInvalidInput},
		{"unknown kind", dto.CreateDispensationRequest{ContextKind: "surgery", ContextID: "x", MedicationID: med, Quantity: 1}, domain.ErrInvalidInput},
		{"missing consultation", dto.CreateDispensationRequest{ContextKind: "derivation", ContextID: "nope", MedicationID: med, Quantity: 1}, domain.ErrContextNotFound},
		{"missing emergency", dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "nope", MedicationID: med, Quantity: 1}, domain.ErrContextNotFound},
		{"unstocked medication", dto.CreateDispensationRequest{ContextKind: "derivation", ContextID: "cons-1", MedicationID: "med-x", Quantity: 1}, domain.ErrStockNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := coord.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, qty(t, store, stockB))
	assert.Empty(t, store.Dispensations())
}

func TestCoordinator_Create_RechecksConsultationStaff(t *testing.T) {
	store, coord := fixture(t)
	// Consulta cargada sin pasar por el flujo de consultas: el doctor pertenece al origen.
	store.PutConsultation(entity.Consultation{
		ID: "cons-bad", Kind: entity.TransferDerivation, TransferID: "der-1", DoctorID: "doc-a", DepartmentHeadID: "head-b",
	})

	_, err := coord.Create(context.Background(), dto.CreateDispensationRequest{
		ContextKind: "derivation", ContextID: "cons-bad", MedicationID: med, Quantity: 1,
	})
	var mismatch *domain.DepartmentMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, domain.MismatchDoctor, mismatch.Party)
	assert.Equal(t, 10, qty(t, store, stockB))
}

func TestCoordinator_EndToEndScenario(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	line, err := coord.Create(ctx, onConsultation(7))
	require.NoError(t, err)
	assert.Equal(t, 3, qty(t, store, stockB))

	_, err = coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 1, qty(t, store, stockB))

	_, err = coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(20)})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Available)
	assert.Equal(t, 11, insufficient.Requested)
	assert.Equal(t, 1, qty(t, store, stockB))

	got, err := coord.Get(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity, "la actualización rechazada no cambia la línea")

	require.NoError(t, coord.Delete(ctx, line.ID))
	assert.Equal(t, 10, qty(t, store, stockB))
	assert.Empty(t, store.Dispensations())
}

func TestCoordinator_Update_NoOpWritesNothing(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()
	line, err := coord.Create(ctx, onConsultation(4))
	require.NoError(t, err)

	store.FailOn(memstore.OpStockSave, errors.New("no write expected"))
	store.FailOn(memstore.OpDispensationUpdate, errors.New("no write expected"))
	defer store.ClearFailures()

	out, err := coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Quantity)

	out, err = coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{ContextKind: "derivation", ContextID: "cons-1"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Quantity)
	assert.Equal(t, 6, qty(t, store, stockB))
}

func TestCoordinator_Update_MovesBetweenDepartments(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	line, err := coord.Create(ctx, dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: med, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, qty(t, store, stockA))

	out, err := coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(2), ContextKind: "derivation", ContextID: "cons-1"})
	require.NoError(t, err)
	assert.Equal(t, "derivation", out.ContextKind)
	assert.Equal(t, "cons-1", out.ContextID)
	assert.Equal(t, 2, out.Quantity)

	assert.Equal(t, 10, qty(t, store, stockA))
	assert.Equal(t, 8, qty(t, store, stockB))
}

func TestCoordinator_Update_MoveRejectedLeavesBothUntouched(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	line, err := coord.Create(ctx, dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: med, Quantity: 3})
	require.NoError(t, err)

	_, err = coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(11), ContextKind: "derivation", ContextID: "cons-1"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 7, qty(t, store, stockA))
	assert.Equal(t, 10, qty(t, store, stockB))
	got, err := coord.Get(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, "emergency", got.ContextKind)
}

func TestCoordinator_Update_Validation(t *testing.T) {
	_, coord := fixture(t)
	ctx := context.Background()

	_, err := coord.Update(ctx, "", dto.UpdateDispensationRequest{Quantity: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = coord.Update(ctx, "x", dto.UpdateDispensationRequest{Quantity: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = coord.Update(ctx, "x", dto.UpdateDispensationRequest{ContextKind: "emergency"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = coord.Update(ctx, "missing", dto.UpdateDispensationRequest{Quantity: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCoordinator_PersistenceFailureRollsBack(t *testing.T) {
	store, coord := fixture(t)
	ctx := context.Background()

	store.FailOn(memstore.OpDispensationCreate, errors.New("connection reset"))
	_, err := coord.Create(ctx, onConsultation(4))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotContains(t, err.Error(), "connection reset")
	assert.Equal(t, 10, qty(t, store, stockB), "la reserva se deshace con la transacción")
	store.ClearFailures()

	line, err := coord.Create(ctx, onConsultation(4))
	require.NoError(t, err)

	store.FailOn(memstore.OpDispensationUpdate, errors.New("connection reset"))
	_, err = coord.Update(ctx, line.ID, dto.UpdateDispensationRequest{Quantity: intPtr(6)})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 6, qty(t, store, stockB))
	store.ClearFailures()

	store.FailOn(memstore.OpDispensationDelete, errors.New("connection reset"))
	err = coord.Delete(ctx, line.ID)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 6, qty(t, store, stockB))
	assert.Len(t, store.Dispensations(), 1)
}

func TestCoordinator_Delete_BestEffort(t *testing.T) {
	t.Run("missing stock record", func(t *testing.T) {
		store, _ := fixture(t)
		var buf bytes.Buffer
		coord := dispensation.NewCoordinator(store, logger.FromZerolog(zerolog.New(&buf)))
		line, err := coord.Create(context.Background(), onConsultation(2))
		require.NoError(t, err)

		store.RemoveStock(stockB)
		require.NoError(t, coord.Delete(context.Background(), line.ID))
		assert.Empty(t, store.Dispensations())
		assert.Contains(t, buf.String(), "registro de stock inexistente")
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("broken context chain", func(t *testing.T) {
		store, coord := fixture(t)
		line, err := coord.Create(context.Background(), onConsultation(2))
		require.NoError(t, err)

		store.RemoveConsultation(entity.TransferDerivation, "cons-1")
		require.NoError(t, coord.Delete(context.Background(), line.ID))
		assert.Empty(t, store.Dispensations())
		assert.Equal(t, 8, qty(t, store, stockB))
	})

	t.Run("unknown line", func(t *testing.T) {
		_, coord := fixture(t)
		assert.ErrorIs(t, coord.Delete(context.Background(), "missing"), domain.ErrNotFound)
	})
}

func TestCoordinator_ConcurrentCreates_NoOversell(t *testing.T) {
	store, coord := fixture(t)
	store.PutStock(entity.StockRecord{DepartmentID: depB, MedicationID: med, Quantity: 5, MaxQuantity: 50})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.Create(context.Background(), onConsultation(4))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, qty(t, store, stockB))
}

func TestCoordinator_ManyConcurrentCreates(t *testing.T) {
	store, coord := fixture(t)
	const workers = 40

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coord.Create(context.Background(), onConsultation(1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, qty(t, store, stockB))
	assert.Len(t, store.Dispensations(), 10)
}

func TestCoordinator_ListByContext(t *testing.T) {
	_, coord := fixture(t)
	ctx := context.Background()

	first, err := coord.Create(ctx, onConsultation(1))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := coord.Create(ctx, onConsultation(2))
	require.NoError(t, err)
	_, err = coord.Create(ctx, dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: med, Quantity: 1})
	require.NoError(t, err)

	list, err := coord.ListByContext(ctx, "derivation", "cons-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = coord.ListByContext(ctx, "", "cons-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
