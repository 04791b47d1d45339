package consultation

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/clinical"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// IdentityValidator comprueba que el personal de una consulta pertenezca al departamento destino del traslado.
// Es el único punto de aplicación de la regla; no existe trigger equivalente en la base de datos.
type IdentityValidator struct {
	staff repository.StaffDirectory
}

// NewIdentityValidator construye el validador sobre el directorio de personal (idealmente atado a la tx).
func NewIdentityValidator(staff repository.StaffDirectory) *IdentityValidator {
	return &IdentityValidator{staff: staff}
}

// ValidateConsultationStaff resuelve el departamento actual del doctor y del jefe de departamento y los compara
// con el destino del traslado. transfer debe leerse de la fila actual, no de una copia en caché.
// Errores: domain.ErrNotFound si algún identificador no existe, *domain.DepartmentMismatchError si no coinciden.
func (v *IdentityValidator) ValidateConsultationStaff(ctx context.Context, transfer *entity.Transfer, doctorID, departmentHeadID string) error {
	doctor, err := v.staff.GetDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	head, err := v.staff.GetDepartmentHead(ctx, departmentHeadID)
	if err != nil {
		return err
	}
	return clinical.CheckStaffDepartments(transfer, doctor, head)
}
