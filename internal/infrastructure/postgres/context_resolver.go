package postgres

import (
	"context"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var _ repository.ContextResolver = (*ContextResolver)(nil)

// ContextResolver recorre la cadena contexto → departamento con lecturas FOR SHARE:
// un traslado o consulta no puede cambiar de destino mientras la transacción que dispensa sigue abierta.
type ContextResolver struct {
	q Querier
}

// NewContextResolver construye el adaptador. Pasar pool o tx (Querier).
func NewContextResolver(q Querier) *ContextResolver {
	return &ContextResolver{q: q}
}

// Resolve devuelve el departamento dueño del stock del contexto.
// Cualquier eslabón ausente (consulta, traslado, urgencia o solicitud) es domain.ErrContextNotFound.
func (r *ContextResolver) Resolve(ctx context.Context, c entity.DispensationContext) (*repository.ResolvedContext, error) {
	switch c.Kind {
	case entity.ContextDerivation:
		return r.resolveConsultation(ctx, c, `
			SELECT c.id, c.derivation_id, c.diagnosis, c.date, c.doctor_id, c.department_head_id,
			       t.source_department_id, '', t.destination_department_id, t.patient_id, t.date
			FROM consultation_derivations c
			JOIN derivations t ON t.id = c.derivation_id
			WHERE c.id = $1
			FOR SHARE`)
	case entity.ContextReferral:
		return r.resolveConsultation(ctx, c, `
			SELECT c.id, c.referral_id, c.diagnosis, c.date, c.doctor_id, c.department_head_id,
			       '', t.external_post_id, t.destination_department_id, t.patient_id, t.date
			FROM consultation_referrals c
			JOIN referrals t ON t.id = c.referral_id
			WHERE c.id = $1
			FOR SHARE`)
	case entity.ContextEmergency:
		return r.resolveDirect(ctx, c, `SELECT department_id FROM emergency_cares WHERE id = $1 FOR SHARE`)
	case entity.ContextRequest:
		return r.resolveDirect(ctx, c, `SELECT department_id FROM warehouse_requests WHERE id = $1 FOR SHARE`)
	}
	return nil, domain.ErrContextNotFound
}

func (r *ContextResolver) resolveConsultation(ctx context.Context, c entity.DispensationContext, query string) (*repository.ResolvedContext, error) {
	kind := c.Kind.TransferKind()
	cons := entity.Consultation{Kind: kind}
	tr := entity.Transfer{Kind: kind}
	err := r.q.QueryRow(ctx, query, c.ID).Scan(
		&cons.ID, &cons.TransferID, &cons.Diagnosis, &cons.Date, &cons.DoctorID, &cons.DepartmentHeadID,
		&tr.SourceDepartmentID, &tr.ExternalPostID, &tr.DestinationDepartmentID, &tr.PatientID, &tr.Date,
	)
	if err != nil {
		return nil, contextErr("resolve consultation context", err)
	}
	tr.ID = cons.TransferID
	return &repository.ResolvedContext{
		DepartmentID: tr.DestinationDepartmentID,
		Consultation: &cons,
		Transfer:     &tr,
	}, nil
}

func (r *ContextResolver) resolveDirect(ctx context.Context, c entity.DispensationContext, query string) (*repository.ResolvedContext, error) {
	var departmentID string
	if err := r.q.QueryRow(ctx, query, c.ID).Scan(&departmentID); err != nil {
		return nil, contextErr("resolve context", err)
	}
	return &repository.ResolvedContext{DepartmentID: departmentID}, nil
}

// contextErr trata un identificador mal formado igual que uno inexistente.
func contextErr(op string, err error) error {
	if pgCode(err) == codeInvalidText {
		return domain.ErrContextNotFound
	}
	return notFoundOr(op, err, domain.ErrContextNotFound)
}
