package inventory

import (
	"context"
	"time"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// StockUseCase expone el libro de stock fuera de una dispensación: alta de registros, umbrales,
// ingresos del almacén y operaciones sueltas del libro, cada una en su propia transacción.
type StockUseCase struct {
	txRunner TxRunner
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner) *StockUseCase {
	return &StockUseCase{txRunner: txRunner}
}

// CreateStock abastece un departamento con un medicamento.
// Devuelve domain.ErrConflict si el par ya existe.
func (uc *StockUseCase) CreateStock(ctx context.Context, in dto.CreateStockRequest) (*dto.StockResponse, error) {
	if in.DepartmentID == "" || in.MedicationID == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := entity.ValidateThresholds(in.MinQuantity, in.MaxQuantity); err != nil {
		return nil, err
	}
	stock := &entity.StockRecord{
		DepartmentID: in.DepartmentID,
		MedicationID: in.MedicationID,
		Quantity:     in.Quantity,
		MinQuantity:  in.MinQuantity,
		MaxQuantity:  in.MaxQuantity,
		UpdatedAt:    time.Now(),
	}
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		return stockRepo.Create(ctx, stock)
	})
	if err != nil {
		return nil, domain.AsPersistence("crear stock", err)
	}
	return ToStockResponse(stock), nil
}

// UpdateThresholds cambia los umbrales mínimo y máximo sin tocar la cantidad.
func (uc *StockUseCase) UpdateThresholds(ctx context.Context, in dto.UpdateThresholdsRequest) (*dto.StockResponse, error) {
	if err := entity.ValidateThresholds(in.MinQuantity, in.MaxQuantity); err != nil {
		return nil, err
	}
	key := entity.StockKey{DepartmentID: in.DepartmentID, MedicationID: in.MedicationID}
	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		stock, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		stock.MinQuantity = in.MinQuantity
		stock.MaxQuantity = in.MaxQuantity
		stock.UpdatedAt = time.Now()
		out = stock
		return stockRepo.Save(ctx, stock)
	})
	if err != nil {
		return nil, domain.AsPersistence("actualizar umbrales", err)
	}
	return ToStockResponse(out), nil
}

// Restock registra un ingreso de medicamento desde el almacén central.
func (uc *StockUseCase) Restock(ctx context.Context, in dto.RestockRequest) (*dto.StockResponse, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	key := entity.StockKey{DepartmentID: in.DepartmentID, MedicationID: in.MedicationID}
	return uc.apply(ctx, "reabastecer", func(l *StockLedger) (*entity.StockRecord, error) {
		return l.Release(ctx, key, in.Amount)
	})
}

// Reserve descuenta amount en su propia transacción.
func (uc *StockUseCase) Reserve(ctx context.Context, key entity.StockKey, amount int) (*dto.StockResponse, error) {
	return uc.apply(ctx, "reservar stock", func(l *StockLedger) (*entity.StockRecord, error) {
		return l.Reserve(ctx, key, amount)
	})
}

// Release devuelve amount en su propia transacción.
func (uc *StockUseCase) Release(ctx context.Context, key entity.StockKey, amount int) (*dto.StockResponse, error) {
	return uc.apply(ctx, "liberar stock", func(l *StockLedger) (*entity.StockRecord, error) {
		return l.Release(ctx, key, amount)
	})
}

// AdjustForUpdate aplica el delta newAmount - oldAmount en su propia transacción.
// Con delta cero devuelve (nil, nil) sin escribir.
func (uc *StockUseCase) AdjustForUpdate(ctx context.Context, key entity.StockKey, oldAmount, newAmount int) (*dto.StockResponse, error) {
	return uc.apply(ctx, "ajustar stock", func(l *StockLedger) (*entity.StockRecord, error) {
		return l.AdjustForUpdate(ctx, key, oldAmount, newAmount)
	})
}

func (uc *StockUseCase) apply(ctx context.Context, op string, fn func(l *StockLedger) (*entity.StockRecord, error)) (*dto.StockResponse, error) {
	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		stock, err := fn(NewStockLedger(stockRepo))
		out = stock
		return err
	})
	if err != nil {
		return nil, domain.AsPersistence(op, err)
	}
	if out == nil {
		return nil, nil
	}
	return ToStockResponse(out), nil
}

// ToStockResponse mapea la entidad al DTO de respuesta.
func ToStockResponse(s *entity.StockRecord) *dto.StockResponse {
	return &dto.StockResponse{
		DepartmentID: s.DepartmentID,
		MedicationID: s.MedicationID,
		Quantity:     s.Quantity,
		MinQuantity:  s.MinQuantity,
		MaxQuantity:  s.MaxQuantity,
		BelowMinimum: s.IsBelowMinimum(),
		AboveMaximum: s.IsAboveMaximum(),
		UpdatedAt:    s.UpdatedAt,
	}
}
