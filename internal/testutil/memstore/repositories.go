package memstore

import (
	"context"
	"sort"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

var (
	_ repository.StockRepository        = stockRepo{}
	_ repository.StockRepository        = autoStock{}
	_ repository.DispensationRepository = dispensationRepo{}
	_ repository.TransferRepository     = transferRepo{}
	_ repository.ConsultationRepository = consultationRepo{}
	_ repository.StaffDirectory         = staffDirectory{}
	_ repository.ContextResolver        = contextResolver{}
)

type stockRepo struct{ t *tx }

func (r stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	v, ok := r.t.st.stock[key]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return &v, nil
}

func (r stockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.Get(ctx, key)
}

func (r stockRepo) Create(_ context.Context, s *entity.StockRecord) error {
	if _, ok := r.t.st.stock[s.Key()]; ok {
		return domain.ErrConflict
	}
	r.t.st.stock[s.Key()] = *s
	return nil
}

func (r stockRepo) Save(_ context.Context, s *entity.StockRecord) error {
	if err := r.t.fail(OpStockSave); err != nil {
		return err
	}
	if _, ok := r.t.st.stock[s.Key()]; !ok {
		return domain.ErrStockNotFound
	}
	if s.Quantity < 0 {
		return &domain.InsufficientStockError{
			DepartmentID: s.DepartmentID, MedicationID: s.MedicationID, Requested: -s.Quantity,
		}
	}
	r.t.st.stock[s.Key()] = *s
	return nil
}

func (r stockRepo) ListBelowMinimum(_ context.Context, departmentID string) ([]*entity.StockLevel, error) {
	return r.list(departmentID, (*entity.StockRecord).IsBelowMinimum), nil
}

func (r stockRepo) ListAboveMaximum(_ context.Context, departmentID string) ([]*entity.StockLevel, error) {
	return r.list(departmentID, (*entity.StockRecord).IsAboveMaximum), nil
}

func (r stockRepo) list(departmentID string, match func(*entity.StockRecord) bool) []*entity.StockLevel {
	var out []*entity.StockLevel
	for _, v := range r.t.st.stock {
		v := v
		if departmentID != "" && v.DepartmentID != departmentID {
			continue
		}
		if match(&v) {
			out = append(out, &entity.StockLevel{StockRecord: v, FillPct: inventory.FillPercentage(v.Quantity, v.MaxQuantity)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// autoStock ejecuta cada llamada en su propia transacción.
type autoStock struct{ s *Store }

func (a autoStock) do(fn func(r stockRepo) error) error {
	return a.s.inTx(context.Background(), func(t *tx) error { return fn(stockRepo{t}) })
}

func (a autoStock) Get(ctx context.Context, key entity.StockKey) (out *entity.StockRecord, err error) {
	err = a.do(func(r stockRepo) error { out, err = r.Get(ctx, key); return err })
	return out, err
}

func (a autoStock) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return a.Get(ctx, key)
}

func (a autoStock) Create(ctx context.Context, s *entity.StockRecord) error {
	return a.do(func(r stockRepo) error { return r.Create(ctx, s) })
}

func (a autoStock) Save(ctx context.Context, s *entity.StockRecord) error {
	return a.do(func(r stockRepo) error { return r.Save(ctx, s) })
}

func (a autoStock) ListBelowMinimum(ctx context.Context, departmentID string) (out []*entity.StockLevel, err error) {
	err = a.do(func(r stockRepo) error { out, err = r.ListBelowMinimum(ctx, departmentID); return err })
	return out, err
}

func (a autoStock) ListAboveMaximum(ctx context.Context, departmentID string) (out []*entity.StockLevel, err error) {
	err = a.do(func(r stockRepo) error { out, err = r.ListAboveMaximum(ctx, departmentID); return err })
	return out, err
}

type dispensationRepo struct{ t *tx }

func (r dispensationRepo) Create(_ context.Context, d *entity.Dispensation) error {
	if err := r.t.fail(OpDispensationCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.dispensations[d.ID]; ok {
		return domain.ErrConflict
	}
	r.t.st.dispensations[d.ID] = *d
	return nil
}

func (r dispensationRepo) GetByID(_ context.Context, id string) (*entity.Dispensation, error) {
	v, ok := r.t.st.dispensations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r dispensationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispensation, error) {
	return r.GetByID(ctx, id)
}

func (r dispensationRepo) Update(_ context.Context, d *entity.Dispensation) error {
	if err := r.t.fail(OpDispensationUpdate); err != nil {
		return err
	}
	if _, ok := r.t.st.dispensations[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.t.st.dispensations[d.ID] = *d
	return nil
}

func (r dispensationRepo) Delete(_ context.Context, id string) error {
	if err := r.t.fail(OpDispensationDelete); err != nil {
		return err
	}
	if _, ok := r.t.st.dispensations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.t.st.dispensations, id)
	return nil
}

func (r dispensationRepo) ListByContext(_ context.Context, c entity.DispensationContext) ([]*entity.Dispensation, error) {
	var list []entity.Dispensation
	for _, d := range r.t.st.dispensations {
		if d.Context == c {
			list = append(list, d)
		}
	}
	sortDispensations(list)
	out := make([]*entity.Dispensation, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

type transferRepo struct{ t *tx }

func (r transferRepo) Create(_ context.Context, tr *entity.Transfer) error {
	m, ok := r.t.st.transfers[tr.Kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	if _, dup := m[tr.ID]; dup {
		return domain.ErrConflict
	}
	m[tr.ID] = *tr
	return nil
}

func (r transferRepo) GetByID(_ context.Context, kind entity.TransferKind, id string) (*entity.Transfer, error) {
	m, ok := r.t.st.transfers[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r transferRepo) Delete(_ context.Context, kind entity.TransferKind, id string) error {
	m, ok := r.t.st.transfers[kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}

type consultationRepo struct{ t *tx }

func (r consultationRepo) Create(_ context.Context, c *entity.Consultation) error {
	m, ok := r.t.st.consultations[c.Kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := r.t.st.transfers[c.Kind][c.TransferID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range m {
		if existing.ID == c.ID || existing.TransferID == c.TransferID {
			return domain.ErrConflict
		}
	}
	m[c.ID] = *c
	return nil
}

func (r consultationRepo) GetByID(_ context.Context, kind entity.TransferKind, id string) (*entity.Consultation, error) {
	m, ok := r.t.st.consultations[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r consultationRepo) GetByTransfer(_ context.Context, kind entity.TransferKind, transferID string) (*entity.Consultation, error) {
	m, ok := r.t.st.consultations[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	for _, v := range m {
		if v.TransferID == transferID {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r consultationRepo) Update(_ context.Context, c *entity.Consultation) error {
	m, ok := r.t.st.consultations[c.Kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := m[c.ID]; !ok {
		return domain.ErrNotFound
	}
	m[c.ID] = *c
	return nil
}

func (r consultationRepo) Delete(_ context.Context, kind entity.TransferKind, id string) error {
	if err := r.t.fail(OpConsultationDelete); err != nil {
		return err
	}
	m, ok := r.t.st.consultations[kind]
	if !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}

type staffDirectory struct{ t *tx }

func (r staffDirectory) GetDoctor(_ context.Context, id string) (*entity.Doctor, error) {
	v, ok := r.t.st.doctors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r staffDirectory) GetDepartmentHead(_ context.Context, id string) (*entity.DepartmentHead, error) {
	v, ok := r.t.st.heads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

type contextResolver struct{ t *tx }

func (r contextResolver) Resolve(_ context.Context, c entity.DispensationContext) (*repository.ResolvedContext, error) {
	switch c.Kind {
	case entity.ContextDerivation, entity.ContextReferral:
		kind := c.Kind.TransferKind()
		cons, ok := r.t.st.consultations[kind][c.ID]
		if !ok {
			return nil, domain.ErrContextNotFound
		}
		tr, ok := r.t.st.transfers[kind][cons.TransferID]
		if !ok {
			return nil, domain.ErrContextNotFound
		}
		return &repository.ResolvedContext{DepartmentID: tr.DestinationDepartmentID, Consultation: &cons, Transfer: &tr}, nil
	case entity.ContextEmergency:
		e, ok := r.t.st.emergencies[c.ID]
		if !ok {
			return nil, domain.ErrContextNotFound
		}
		return &repository.ResolvedContext{DepartmentID: e.DepartmentID}, nil
	case entity.ContextRequest:
		w, ok := r.t.st.requests[c.ID]
		if !ok {
			return nil, domain.ErrContextNotFound
		}
		return &repository.ResolvedContext{DepartmentID: w.DepartmentID}, nil
	}
	return nil, domain.ErrContextNotFound
}
