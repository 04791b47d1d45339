package repository

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
)

// ResolvedContext es el resultado de recorrer Dispensación → Consulta → Traslado → departamento destino.
// Consultation y Transfer solo se rellenan para contextos de consulta.
type ResolvedContext struct {
	DepartmentID string
	Consultation *entity.Consultation
	Transfer     *entity.Transfer
}

// ContextResolver resuelve el departamento dueño del stock de un contexto de dispensación.
// Único modo de fallo: domain.ErrContextNotFound cuando la cadena está rota.
type ContextResolver interface {
	Resolve(ctx context.Context, c entity.DispensationContext) (*ResolvedContext, error)
}
