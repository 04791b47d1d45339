package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDepartmentMismatch = errors.New("el personal no pertenece al departamento destino")
	ErrPersistence        = errors.New("fallo de persistencia")

	// ErrStockNotFound y ErrContextNotFound son variantes de ErrNotFound.
	ErrStockNotFound   = fmt.Errorf("%w: registro de stock", ErrNotFound)
	ErrContextNotFound = fmt.Errorf("%w: contexto de dispensación", ErrNotFound)
)

// InsufficientStockError detalla una reserva rechazada por falta de existencias.
type InsufficientStockError struct {
	DepartmentID string
	MedicationID string
	Available    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible=%d, solicitado=%d", e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MismatchParty indica quién no pertenece al departamento destino.
type MismatchParty string

const (
	MismatchDoctor         MismatchParty = "doctor"
	MismatchDepartmentHead MismatchParty = "department_head"
	MismatchBoth           MismatchParty = "both"
)

// DepartmentMismatchError describe una violación de la identidad departamental de una consulta.
type DepartmentMismatchError struct {
	Party              MismatchParty
	Expected           string // departamento destino del traslado
	DoctorDepartmentID string
	HeadDepartmentID   string
}

func (e *DepartmentMismatchError) Error() string {
	switch e.Party {
	case MismatchDoctor:
		return fmt.Sprintf("el doctor pertenece al departamento %s y el destino es %s", e.DoctorDepartmentID, e.Expected)
	case MismatchDepartmentHead:
		return fmt.Sprintf("el jefe de departamento pertenece al departamento %s y el destino es %s", e.HeadDepartmentID, e.Expected)
	default:
		return fmt.Sprintf("doctor (%s) y jefe de departamento (%s) no pertenecen al destino %s",
			e.DoctorDepartmentID, e.HeadDepartmentID, e.Expected)
	}
}

// Is permite errors.Is(err, ErrDepartmentMismatch).
func (e *DepartmentMismatchError) Is(target error) bool {
	return target == ErrDepartmentMismatch
}

// PersistenceError envuelve un fallo de almacenamiento ajeno a las reglas de negocio.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrPersistence)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsBusinessRule indica si err es un rechazo de negocio que se devuelve tal cual al llamador.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDepartmentMismatch)
}

// AsPersistence deja pasar los errores de negocio y envuelve el resto como PersistenceError.
func AsPersistence(op string, err error) error {
	if err == nil || IsBusinessRule(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
