package entity

import "time"

// ContextKind indica contra qué se emite una dispensación.
type ContextKind string

const (
	ContextDerivation ContextKind = "derivation" // consulta de derivación
	ContextReferral   ContextKind = "referral"   // consulta de remisión
	ContextEmergency  ContextKind = "emergency"  // atención de urgencias
	ContextRequest    ContextKind = "request"    // solicitud de almacén
)

// Valid indica si el tipo de contexto es conocido.
func (k ContextKind) Valid() bool {
	switch k {
	case ContextDerivation, ContextReferral, ContextEmergency, ContextRequest:
		return true
	}
	return false
}

// IsConsultation indica si el contexto es una consulta (derivación o remisión).
func (k ContextKind) IsConsultation() bool {
	return k == ContextDerivation || k == ContextReferral
}

// TransferKind devuelve el tipo de traslado asociado a un contexto de consulta.
func (k ContextKind) TransferKind() TransferKind {
	if k == ContextReferral {
		return TransferReferral
	}
	return TransferDerivation
}

// DispensationContext referencia la consulta, urgencia o solicitud de almacén de una dispensación.
type DispensationContext struct {
	Kind ContextKind
	ID   string
}

// ContextForConsultation construye el contexto de dispensación de una consulta.
func ContextForConsultation(c *Consultation) DispensationContext {
	kind := ContextDerivation
	if c.Kind == TransferReferral {
		kind = ContextReferral
	}
	return DispensationContext{Kind: kind, ID: c.ID}
}

// Dispensation es una cantidad de un medicamento emitida contra un contexto.
// El departamento de stock no se guarda: se deriva del contexto.
type Dispensation struct {
	ID           string
	Context      DispensationContext
	MedicationID string
	Quantity     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmergencyCare es una atención en urgencias; su departamento es directo.
type EmergencyCare struct {
	ID           string
	DepartmentID string
	PatientID    string
	DoctorID     string
	Date         time.Time
}

// WarehouseRequest es una solicitud de medicamentos de un departamento al almacén.
type WarehouseRequest struct {
	ID           string
	DepartmentID string
	Status       string
	Date         time.Time
}
