package entity

import "time"

// Doctor es un médico asignado a un departamento.
type Doctor struct {
	ID           string
	Name         string
	DepartmentID string
}

// DepartmentHead es el jefe de un departamento; revisa las consultas de ese departamento.
type DepartmentHead struct {
	ID           string
	DoctorID     string
	DepartmentID string
	AssignedAt   time.Time
}
