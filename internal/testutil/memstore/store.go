// Package memstore es un almacén transaccional en memoria que implementa los puertos de repositorio
// y los TxRunner de la capa de aplicación. Lo usan los tests de aplicación y del adaptador HTTP.
//
// Las transacciones se serializan con un único mutex (equivalente a bloquear todas las filas) y
// se deshacen restaurando una copia del estado tomada al inicio.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

type state struct {
	stock         map[entity.StockKey]entity.StockRecord
	dispensations map[string]entity.Dispensation
	transfers     map[entity.TransferKind]map[string]entity.Transfer
	consultations map[entity.TransferKind]map[string]entity.Consultation
	doctors       map[string]entity.Doctor
	heads         map[string]entity.DepartmentHead
	emergencies   map[string]entity.EmergencyCare
	requests      map[string]entity.WarehouseRequest
}

func newState() state {
	return state{
		stock:         map[entity.StockKey]entity.StockRecord{},
		dispensations: map[string]entity.Dispensation{},
		transfers: map[entity.TransferKind]map[string]entity.Transfer{
			entity.TransferDerivation: {},
			entity.TransferReferral:   {},
		},
		consultations: map[entity.TransferKind]map[string]entity.Consultation{
			entity.TransferDerivation: {},
			entity.TransferReferral:   {},
		},
		doctors:     map[string]entity.Doctor{},
		heads:       map[string]entity.DepartmentHead{},
		emergencies: map[string]entity.EmergencyCare{},
		requests:    map[string]entity.WarehouseRequest{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	c := state{
		stock:         cloneMap(s.stock),
		dispensations: cloneMap(s.dispensations),
		transfers:     make(map[entity.TransferKind]map[string]entity.Transfer, len(s.transfers)),
		consultations: make(map[entity.TransferKind]map[string]entity.Consultation, len(s.consultations)),
		doctors:       cloneMap(s.doctors),
		heads:         cloneMap(s.heads),
		emergencies:   cloneMap(s.emergencies),
		requests:      cloneMap(s.requests),
	}
	for k, v := range s.transfers {
		c.transfers[k] = cloneMap(v)
	}
	for k, v := range s.consultations {
		c.consultations[k] = cloneMap(v)
	}
	return c
}

// Store mantiene el estado y serializa las transacciones.
type Store struct {
	mu       sync.Mutex
	state    state
	failures map[string]error
	commits  int
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{state: newState(), failures: map[string]error{}}
}

// Operaciones en las que se puede inyectar un fallo con FailOn.
const (
	OpStockSave          = "stock.save"
	OpDispensationCreate = "dispensation.create"
	OpDispensationUpdate = "dispensation.update"
	OpDispensationDelete = "dispensation.delete"
	OpConsultationDelete = "consultation.delete"
)

// FailOn hace que op devuelva err hasta que se llame a ClearFailures.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures elimina los fallos inyectados.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// Commits devuelve cuántas transacciones se confirmaron.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// tx es la vista de una transacción en curso; el mutex del Store está tomado mientras existe.
type tx struct {
	st       *state
	failures map[string]error
}

func (t *tx) fail(op string) error {
	return t.failures[op]
}

// inTx ejecuta fn con el estado bloqueado; si fn falla se restaura la copia previa.
func (s *Store) inTx(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&tx{st: &s.state, failures: s.failures}); err != nil {
		s.state = snapshot
		return err
	}
	s.commits++
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(stockRepo{t})
	})
}

// RunDispensation implementa dispensation.TxRunner.
func (s *Store) RunDispensation(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	dispRepo repository.DispensationRepository,
	contexts repository.ContextResolver,
	staff repository.StaffDirectory,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(stockRepo{t}, dispensationRepo{t}, contextResolver{t}, staffDirectory{t})
	})
}

// RunConsultation implementa consultation.TxRunner.
func (s *Store) RunConsultation(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	consultRepo repository.ConsultationRepository,
	dispRepo repository.DispensationRepository,
	stockRepo repository.StockRepository,
	staff repository.StaffDirectory,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(transferRepo{t}, consultationRepo{t}, dispensationRepo{t}, stockRepo{t}, staffDirectory{t})
	})
}

// RunTransfer implementa transfer.TxRunner.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	consultRepo repository.ConsultationRepository,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(transferRepo{t}, consultationRepo{t})
	})
}

// StockRepository devuelve un repositorio de stock fuera de transacción (lecturas del reporte).
// Cada llamada toma el mutex por separado.
func (s *Store) StockRepository() repository.StockRepository {
	return autoStock{s: s}
}

// Stock devuelve una copia del registro o false si no existe.
func (s *Store) Stock(key entity.StockKey) (entity.StockRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state.stock[key]
	return v, ok
}

// Dispensations devuelve todas las líneas ordenadas por fecha de creación.
func (s *Store) Dispensations() []entity.Dispensation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Dispensation, 0, len(s.state.dispensations))
	for _, d := range s.state.dispensations {
		out = append(out, d)
	}
	sortDispensations(out)
	return out
}

// PutStock inserta o reemplaza un registro de stock.
func (s *Store) PutStock(rec entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.stock[rec.Key()] = rec
}

// RemoveStock elimina un registro de stock (simula datos inconsistentes).
func (s *Store) RemoveStock(key entity.StockKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.stock, key)
}

// PutDoctor registra un doctor.
func (s *Store) PutDoctor(d entity.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.doctors[d.ID] = d
}

// PutDepartmentHead registra una jefatura.
func (s *Store) PutDepartmentHead(h entity.DepartmentHead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.heads[h.ID] = h
}

// PutTransfer registra un traslado.
func (s *Store) PutTransfer(t entity.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.transfers[t.Kind][t.ID] = t
}

// RemoveTransfer elimina un traslado sin comprobar consultas (simula datos inconsistentes).
func (s *Store) RemoveTransfer(kind entity.TransferKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.transfers[kind], id)
}

// PutConsultation registra una consulta sin validar.
func (s *Store) PutConsultation(c entity.Consultation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.consultations[c.Kind][c.ID] = c
}

// RemoveConsultation elimina una consulta sin tocar sus dispensaciones (simula datos inconsistentes).
func (s *Store) RemoveConsultation(kind entity.TransferKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.consultations[kind], id)
}

// PutEmergency registra una atención de urgencias.
func (s *Store) PutEmergency(e entity.EmergencyCare) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.emergencies[e.ID] = e
}

// PutWarehouseRequest registra una solicitud de almacén.
func (s *Store) PutWarehouseRequest(r entity.WarehouseRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.requests[r.ID] = r
}

func sortDispensations(list []entity.Dispensation) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
