package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación sobre PostgreSQL: derivaciones y remisiones viven en tablas separadas.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste una derivación o una remisión según t.Kind.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	var err error
	switch t.Kind {
	case entity.TransferDerivation:
		_, err = r.q.Exec(ctx, `
			INSERT INTO derivations (id, source_department_id, destination_department_id, patient_id, date)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.SourceDepartmentID, t.DestinationDepartmentID, t.PatientID, t.Date)
	case entity.TransferReferral:
		_, err = r.q.Exec(ctx, `
			INSERT INTO referrals (id, external_post_id, destination_department_id, patient_id, date)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.ExternalPostID, t.DestinationDepartmentID, t.PatientID, t.Date)
	default:
		return domain.ErrInvalidInput
	}
	return wrapErr("create transfer", err)
}

// GetByID lee el traslado actual (sin caché).
func (r *TransferRepo) GetByID(ctx context.Context, kind entity.TransferKind, id string) (*entity.Transfer, error) {
	t := entity.Transfer{Kind: kind}
	var row pgx.Row
	switch kind {
	case entity.TransferDerivation:
		row = r.q.QueryRow(ctx, `
			SELECT id, source_department_id, destination_department_id, patient_id, date
			FROM derivations WHERE id = $1`, id)
		err := row.Scan(&t.ID, &t.SourceDepartmentID, &t.DestinationDepartmentID, &t.PatientID, &t.Date)
		if err != nil {
			return nil, notFoundOr("get derivation", err, domain.ErrNotFound)
		}
	case entity.TransferReferral:
		row = r.q.QueryRow(ctx, `
			SELECT id, external_post_id, destination_department_id, patient_id, date
			FROM referrals WHERE id = $1`, id)
		err := row.Scan(&t.ID, &t.ExternalPostID, &t.DestinationDepartmentID, &t.PatientID, &t.Date)
		if err != nil {
			return nil, notFoundOr("get referral", err, domain.ErrNotFound)
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}

// Delete elimina el traslado.
func (r *TransferRepo) Delete(ctx context.Context, kind entity.TransferKind, id string) error {
	table, ok := transferTables[kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete transfer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var transferTables = map[entity.TransferKind]string{
	entity.TransferDerivation: "derivations",
	entity.TransferReferral:   "referrals",
}
