package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.ConsultationRepository = (*ConsultationRepo)(nil)

// consultationTable describe la tabla de consultas de cada tipo de traslado y su columna de referencia.
type consultationTable struct {
	name      string
	transferC string
}

var consultationTables = map[entity.TransferKind]consultationTable{
	entity.TransferDerivation: {name: "consultation_derivations", transferC: "derivation_id"},
	entity.TransferReferral:   {name: "consultation_referrals", transferC: "referral_id"},
}

// ConsultationRepo implementación sobre PostgreSQL (usable con pool o tx).
type ConsultationRepo struct {
	q Querier
}

// NewConsultationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsultationRepository(q Querier) *ConsultationRepo {
	return &ConsultationRepo{q: q}
}

func (t consultationTable) cols() string {
	return `id, ` + t.transferC + `, diagnosis, date, doctor_id, department_head_id`
}

func scanConsultation(row pgx.Row, kind entity.TransferKind) (*entity.Consultation, error) {
	c := entity.Consultation{Kind: kind}
	err := row.Scan(&c.ID, &c.TransferID, &c.Diagnosis, &c.Date, &c.DoctorID, &c.DepartmentHeadID)
	return &c, err
}

// Create persiste la consulta. La unicidad por traslado la garantiza un índice único.
func (r *ConsultationRepo) Create(ctx context.Context, c *entity.Consultation) error {
	t, ok := consultationTables[c.Kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	query := `INSERT INTO ` + t.name + ` (` + t.cols() + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, c.ID, c.TransferID, c.Diagnosis, c.Date, c.DoctorID, c.DepartmentHeadID)
	return wrapErr("create consultation", err)
}

// GetByID obtiene una consulta por tipo e ID.
func (r *ConsultationRepo) GetByID(ctx context.Context, kind entity.TransferKind, id string) (*entity.Consultation, error) {
	t, ok := consultationTables[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	c, err := scanConsultation(r.q.QueryRow(ctx, `SELECT `+t.cols()+` FROM `+t.name+` WHERE id = $1`, id), kind)
	if err != nil {
		return nil, notFoundOr("get consultation", err, domain.ErrNotFound)
	}
	return c, nil
}

// GetByTransfer devuelve la consulta del traslado o (nil, nil) si no tiene.
func (r *ConsultationRepo) GetByTransfer(ctx context.Context, kind entity.TransferKind, transferID string) (*entity.Consultation, error) {
	t, ok := consultationTables[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	query := `SELECT ` + t.cols() + ` FROM ` + t.name + ` WHERE ` + t.transferC + ` = $1`
	c, err := scanConsultation(r.q.QueryRow(ctx, query, transferID), kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get consultation by transfer", err)
	}
	return c, nil
}

// Update persiste diagnóstico, fecha y personal.
func (r *ConsultationRepo) Update(ctx context.Context, c *entity.Consultation) error {
	t, ok := consultationTables[c.Kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	query := `UPDATE ` + t.name + `
		SET diagnosis = $2, date = $3, doctor_id = $4, department_head_id = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Diagnosis, c.Date, c.DoctorID, c.DepartmentHeadID)
	if err != nil {
		return wrapErr("update consultation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la consulta.
func (r *ConsultationRepo) Delete(ctx context.Context, kind entity.TransferKind, id string) error {
	t, ok := consultationTables[kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM `+t.name+` WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete consultation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
