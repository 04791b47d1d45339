package dto

import "time"

// CreateDispensationRequest body para POST /api/dispensations.
type CreateDispensationRequest struct {
	ContextKind  string `json:"context_kind"` // derivation | referral | emergency | request
	ContextID    string `json:"context_id"`
	MedicationID string `json:"medication_id"`
	Quantity     int    `json:"quantity"`
}

// UpdateDispensationRequest body para PUT /api/dispensations/:id.
// Quantity nil mantiene la cantidad; ContextKind/ContextID vacíos mantienen el contexto.
type UpdateDispensationRequest struct {
	Quantity    *int   `json:"quantity,omitempty"`
	ContextKind string `json:"context_kind,omitempty"`
	ContextID   string `json:"context_id,omitempty"`
}

// DispensationResponse línea de dispensación persistida.
type DispensationResponse struct {
	ID           string    `json:"id"`
	ContextKind  string    `json:"context_kind"`
	ContextID    string    `json:"context_id"`
	MedicationID string    `json:"medication_id"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
