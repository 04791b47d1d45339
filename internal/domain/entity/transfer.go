package entity

import "time"

// TransferKind distingue derivaciones (entre departamentos) de remisiones (desde un puesto externo).
type TransferKind string

const (
	TransferDerivation TransferKind = "derivation"
	TransferReferral   TransferKind = "referral"
)

// Valid indica si el tipo de traslado es conocido.
func (k TransferKind) Valid() bool {
	return k == TransferDerivation || k == TransferReferral
}

// Transfer es el traspaso de un caso hacia un departamento destino.
// Inmutable una vez creado, salvo su eliminación.
// SourceDepartmentID se usa en derivaciones y ExternalPostID en remisiones.
type Transfer struct {
	ID                      string
	Kind                    TransferKind
	SourceDepartmentID      string
	ExternalPostID          string
	DestinationDepartmentID string
	PatientID               string
	Date                    time.Time
}
