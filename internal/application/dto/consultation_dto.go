package dto

import "time"

// CreateConsultationRequest body para POST /api/consultations/:kind.
type CreateConsultationRequest struct {
	TransferID       string    `json:"transfer_id"`
	Diagnosis        string    `json:"diagnosis"`
	Date             time.Time `json:"date"`
	DoctorID         string    `json:"doctor_id"`
	DepartmentHeadID string    `json:"department_head_id"`
}

// UpdateConsultationRequest body para PUT /api/consultations/:kind/:id. Campos nil no cambian.
type UpdateConsultationRequest struct {
	Diagnosis        *string    `json:"diagnosis,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	DoctorID         *string    `json:"doctor_id,omitempty"`
	DepartmentHeadID *string    `json:"department_head_id,omitempty"`
}

// ConsultationResponse consulta persistida.
type ConsultationResponse struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	TransferID       string    `json:"transfer_id"`
	Diagnosis        string    `json:"diagnosis"`
	Date             time.Time `json:"date"`
	DoctorID         string    `json:"doctor_id"`
	DepartmentHeadID string    `json:"department_head_id"`
}
