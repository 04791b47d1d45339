package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// StaffDirectory resuelve el departamento actual de doctores y jefes de departamento.
// Ambos métodos devuelven domain.ErrNotFound si el identificador no existe.
type StaffDirectory interface {
	GetDoctor(ctx context.Context, id string) (*entity.Doctor, error)
	GetDepartmentHead(ctx context.Context, id string) (*entity.DepartmentHead, error)
}
