package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.DispensationRepository = (*DispensationRepo)(nil)

// DispensationRepo implementación sobre PostgreSQL (usable con pool o tx).
type DispensationRepo struct {
	q Querier
}

// NewDispensationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispensationRepository(q Querier) *DispensationRepo {
	return &DispensationRepo{q: q}
}

const dispensationCols = `id, context_kind, context_id, medication_id, quantity, created_at, updated_at`

func scanDispensation(row pgx.Row) (*entity.Dispensation, error) {
	var d entity.Dispensation
	var kind string
	err := row.Scan(&d.ID, &kind, &d.Context.ID, &d.MedicationID, &d.Quantity, &d.CreatedAt, &d.UpdatedAt)
	d.Context.Kind = entity.ContextKind(kind)
	return &d, err
}

// Create persiste una línea de dispensación.
func (r *DispensationRepo) Create(ctx context.Context, d *entity.Dispensation) error {
	query := `
		INSERT INTO dispensations (id, context_kind, context_id, medication_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		d.ID, string(d.Context.Kind), d.Context.ID, d.MedicationID, d.Quantity, d.CreatedAt, d.UpdatedAt,
	)
	return wrapErr("create dispensation", err)
}

// GetByID obtiene una línea por ID.
func (r *DispensationRepo) GetByID(ctx context.Context, id string) (*entity.Dispensation, error) {
	d, err := scanDispensation(r.q.QueryRow(ctx, `SELECT `+dispensationCols+` FROM dispensations WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr("get dispensation", err, domain.ErrNotFound)
	}
	return d, nil
}

// GetForUpdate obtiene la línea y la bloquea: dos modificaciones concurrentes no leen la misma cantidad previa.
func (r *DispensationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispensation, error) {
	d, err := scanDispensation(r.q.QueryRow(ctx, `SELECT `+dispensationCols+` FROM dispensations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr("get dispensation for update", err, domain.ErrNotFound)
	}
	return d, nil
}

// Update persiste cantidad y contexto.
func (r *DispensationRepo) Update(ctx context.Context, d *entity.Dispensation) error {
	query := `
		UPDATE dispensations
		SET context_kind = $2, context_id = $3, quantity = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, d.ID, string(d.Context.Kind), d.Context.ID, d.Quantity, d.UpdatedAt)
	if err != nil {
		return wrapErr("update dispensation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la línea.
func (r *DispensationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM dispensations WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete dispensation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByContext lista las líneas de un contexto ordenadas por fecha de creación.
func (r *DispensationRepo) ListByContext(ctx context.Context, c entity.DispensationContext) ([]*entity.Dispensation, error) {
	query := `SELECT ` + dispensationCols + ` FROM dispensations
		WHERE context_kind = $1 AND context_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, string(c.Kind), c.ID)
	if err != nil {
		return nil, wrapErr("list dispensations", err)
	}
	defer rows.Close()
	var list []*entity.Dispensation
	for rows.Next() {
		d, err := scanDispensation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispensation: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
