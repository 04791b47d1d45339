package clinical

import (
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// CheckStaffDepartments verifica que doctor y jefe de departamento pertenezcan al destino del traslado
// (servicio de dominio). Es el único punto donde se aplica esta regla.
func CheckStaffDepartments(transfer *entity.Transfer, doctor *entity.Doctor, head *entity.DepartmentHead) error {
	dest := transfer.DestinationDepartmentID
	doctorOK := doctor.DepartmentID == dest
	headOK := head.DepartmentID == dest
	if doctorOK && headOK {
		return nil
	}

	party := domain.MismatchBoth
	switch {
	case doctorOK:
		party = domain.MismatchDepartmentHead
	case headOK:
		party = domain.MismatchDoctor
	}
	return &domain.DepartmentMismatchError{
		Party:              party,
		Expected:           dest,
		DoctorDepartmentID: doctor.DepartmentID,
		HeadDepartmentID:   head.DepartmentID,
	}
}
