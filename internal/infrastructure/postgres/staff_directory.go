package postgres

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.StaffDirectory = (*StaffDirectory)(nil)

// StaffDirectory lee la asignación actual de doctores y jefes de departamento.
type StaffDirectory struct {
	q Querier
}

// NewStaffDirectory construye el adaptador. Pasar pool o tx (Querier).
func NewStaffDirectory(q Querier) *StaffDirectory {
	return &StaffDirectory{q: q}
}

// GetDoctor obtiene el doctor con su departamento actual.
func (r *StaffDirectory) GetDoctor(ctx context.Context, id string) (*entity.Doctor, error) {
	var d entity.Doctor
	err := r.q.QueryRow(ctx, `SELECT id, name, department_id FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.DepartmentID)
	if err != nil {
		return nil, notFoundOr("get doctor", err, domain.ErrNotFound)
	}
	return &d, nil
}

// GetDepartmentHead obtiene la jefatura con el departamento que dirige.
func (r *StaffDirectory) GetDepartmentHead(ctx context.Context, id string) (*entity.DepartmentHead, error) {
	var h entity.DepartmentHead
	err := r.q.QueryRow(ctx, `
		SELECT id, doctor_id, department_id, assigned_at
		FROM department_heads WHERE id = $1`, id).
		Scan(&h.ID, &h.DoctorID, &h.DepartmentID, &h.AssignedAt)
	if err != nil {
		return nil, notFoundOr("get department head", err, domain.ErrNotFound)
	}
	return &h, nil
}
