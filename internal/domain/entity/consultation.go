package entity

import "time"

// Consultation es el registro clínico que resuelve un traslado.
// Invariante: el doctor y el jefe de departamento pertenecen al departamento destino del traslado.
type Consultation struct {
	ID               string
	Kind             TransferKind // mismo tipo que el traslado padre
	TransferID       string
	Diagnosis        string
	Date             time.Time
	DoctorID         string
	DepartmentHeadID string
}
