package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockCols = `department_id, medication_id, quantity, min_quantity, max_quantity, updated_at`

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.DepartmentID, &s.MedicationID, &s.Quantity, &s.MinQuantity, &s.MaxQuantity, &s.UpdatedAt)
	return &s, err
}

// Get obtiene el stock actual sin bloquear la fila.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockCols + ` FROM stock_records WHERE department_id = $1 AND medication_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, key.DepartmentID, key.MedicationID))
	if err != nil {
		return nil, notFoundOr("get stock", err, domain.ErrStockNotFound)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Las transacciones concurrentes sobre el mismo (departamento, medicamento) esperan al commit.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockCols + ` FROM stock_records WHERE department_id = $1 AND medication_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, key.DepartmentID, key.MedicationID))
	if err != nil {
		return nil, notFoundOr("get stock for update", err, domain.ErrStockNotFound)
	}
	return s, nil
}

// Create inserta un registro nuevo; duplicados devuelven domain.ErrConflict.
func (r *StockRepo) Create(ctx context.Context, s *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (department_id, medication_id, quantity, min_quantity, max_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.DepartmentID, s.MedicationID, s.Quantity, s.MinQuantity, s.MaxQuantity, s.UpdatedAt)
	return wrapErr("create stock", err)
}

// Save persiste cantidad y umbrales. El CHECK (quantity >= 0) de la tabla es solo una red de seguridad:
// la regla se aplica antes en la entidad, así que una violación aquí es un estado concurrente inesperado
// y se devuelve como domain.ErrConflict sin detalles.
func (r *StockRepo) Save(ctx context.Context, s *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity = $3, min_quantity = $4, max_quantity = $5, updated_at = $6
		WHERE department_id = $1 AND medication_id = $2`
	tag, err := r.q.Exec(ctx, query, s.DepartmentID, s.MedicationID, s.Quantity, s.MinQuantity, s.MaxQuantity, s.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeCheckViolation {
			return domain.ErrConflict
		}
		return wrapErr("save stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// ListBelowMinimum lista los registros con quantity < min_quantity (lectura sin bloqueo).
func (r *StockRepo) ListBelowMinimum(ctx context.Context, departmentID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, "quantity < min_quantity", departmentID)
}

// ListAboveMaximum lista los registros con quantity > max_quantity (lectura sin bloqueo).
func (r *StockRepo) ListAboveMaximum(ctx context.Context, departmentID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, "quantity > max_quantity", departmentID)
}

// fillPctExpr calcula el porcentaje de llenado como NUMERIC (codec shopspring/decimal registrado en el pool).
const fillPctExpr = `COALESCE(ROUND(quantity::numeric * 100 / NULLIF(max_quantity, 0), 2), 0)`

func (r *StockRepo) list(ctx context.Context, cond, departmentID string) ([]*entity.StockLevel, error) {
	query := `SELECT ` + stockCols + `, ` + fillPctExpr + ` AS fill_pct FROM stock_records WHERE ` + cond
	var args []any
	if departmentID != "" {
		query += ` AND department_id = $1`
		args = append(args, departmentID)
	}
	query += ` ORDER BY department_id, medication_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		err := rows.Scan(&l.DepartmentID, &l.MedicationID, &l.Quantity, &l.MinQuantity, &l.MaxQuantity, &l.UpdatedAt, &l.FillPct)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
