package dto

import "time"

// CreateDerivationRequest body para POST /api/transfers/derivations.
type CreateDerivationRequest struct {
	SourceDepartmentID      string    `json:"source_department_id"`
	DestinationDepartmentID string    `json:"destination_department_id"`
	PatientID               string    `json:"patient_id"`
	Date                    time.Time `json:"date"`
}

// CreateReferralRequest body para POST /api/transfers/referrals.
type CreateReferralRequest struct {
	ExternalPostID          string    `json:"external_post_id"`
	DestinationDepartmentID string    `json:"destination_department_id"`
	PatientID               string    `json:"patient_id"`
	Date                    time.Time `json:"date"`
}

// TransferResponse traslado persistido.
type TransferResponse struct {
	ID                      string    `json:"id"`
	Kind                    string    `json:"kind"`
	SourceDepartmentID      string    `json:"source_department_id,omitempty"`
	ExternalPostID          string    `json:"external_post_id,omitempty"`
	DestinationDepartmentID string    `json:"destination_department_id"`
	PatientID               string    `json:"patient_id"`
	Date                    time.Time `json:"date"`
}
