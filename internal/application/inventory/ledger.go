package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// StockLedger aplica reservas y liberaciones sobre los contadores de stock.
// Debe construirse con un repositorio atado a la transacción del llamador: cada operación bloquea la fila
// (SELECT FOR UPDATE), aplica la regla en la entidad y persiste, todo dentro de esa misma transacción.
type StockLedger struct {
	stockRepo repository.StockRepository
	now       func() time.Time
}

// NewStockLedger construye el libro sobre un repositorio transaccional.
func NewStockLedger(stockRepo repository.StockRepository) *StockLedger {
	return &StockLedger{stockRepo: stockRepo, now: time.Now}
}

// Reserve descuenta amount del stock (departamento, medicamento).
// Errores: domain.ErrStockNotFound, *domain.InsufficientStockError.
func (l *StockLedger) Reserve(ctx context.Context, key entity.StockKey, amount int) (*entity.StockRecord, error) {
	stock, err := l.stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := stock.Reserve(amount); err != nil {
		return nil, err
	}
	if err := l.save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Release devuelve amount al stock. Solo falla si el registro no existe.
func (l *StockLedger) Release(ctx context.Context, key entity.StockKey, amount int) (*entity.StockRecord, error) {
	stock, err := l.stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := stock.Release(amount); err != nil {
		return nil, err
	}
	if err := l.save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// AdjustForUpdate aplica newAmount - oldAmount en una única lectura-comprobación-escritura bloqueada.
// Con delta cero no bloquea ni escribe y devuelve (nil, nil).
func (l *StockLedger) AdjustForUpdate(ctx context.Context, key entity.StockKey, oldAmount, newAmount int) (*entity.StockRecord, error) {
	if oldAmount == newAmount {
		return nil, nil
	}
	stock, err := l.stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if _, err := stock.Adjust(oldAmount, newAmount); err != nil {
		return nil, err
	}
	if err := l.save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Move libera oldAmount en oldKey y reserva newAmount en newKey.
// Las dos filas se bloquean en orden (departamento, medicamento) para evitar interbloqueos;
// si la reserva falla el llamador debe abortar la transacción y la liberación se deshace con ella.
func (l *StockLedger) Move(ctx context.Context, oldKey entity.StockKey, oldAmount int, newKey entity.StockKey, newAmount int) error {
	if oldKey == newKey {
		_, err := l.AdjustForUpdate(ctx, oldKey, oldAmount, newAmount)
		return err
	}

	first, second := oldKey, newKey
	if newKey.Less(oldKey) {
		first, second = newKey, oldKey
	}
	locked := make(map[entity.StockKey]*entity.StockRecord, 2)
	for _, k := range []entity.StockKey{first, second} {
		stock, err := l.stockRepo.GetForUpdate(ctx, k)
		if err != nil {
			return err
		}
		locked[k] = stock
	}

	src, dst := locked[oldKey], locked[newKey]
	if err := src.Release(oldAmount); err != nil {
		return err
	}
	if err := dst.Reserve(newAmount); err != nil {
		return err
	}
	if err := l.save(ctx, src); err != nil {
		return err
	}
	return l.save(ctx, dst)
}

// ReleaseMany devuelve varias cantidades dentro de la transacción del llamador.
// Las filas se bloquean en orden (departamento, medicamento), igual que en Move.
// Las claves sin registro de stock no se tocan y se devuelven en missing.
func (l *StockLedger) ReleaseMany(ctx context.Context, amounts map[entity.StockKey]int) (missing []entity.StockKey, err error) {
	keys := make([]entity.StockKey, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	for _, k := range keys {
		if _, err := l.Release(ctx, k, amounts[k]); err != nil {
			if !errors.Is(err, domain.ErrStockNotFound) {
				return nil, err
			}
			missing = append(missing, k)
		}
	}
	return missing, nil
}

func (l *StockLedger) save(ctx context.Context, stock *entity.StockRecord) error {
	stock.UpdatedAt = l.now()
	return l.stockRepo.Save(ctx, stock)
}
