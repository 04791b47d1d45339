package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundVariants(t *testing.T) {
	assert.ErrorIs(t, domain.ErrStockNotFound, domain.ErrNotFound)
	assert.ErrorIs(t, domain.ErrContextNotFound, domain.ErrNotFound)
	assert.NotErrorIs(t, domain.ErrStockNotFound, domain.ErrContextNotFound)
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	insufficient := fmt.Errorf("reserve: %w", &domain.InsufficientStockError{Available: 1, Requested: 11})
	assert.ErrorIs(t, insufficient, domain.ErrInsufficientStock)
	assert.Contains(t, insufficient.Error(), "disponible=1, solicitado=11")

	mismatch := &domain.DepartmentMismatchError{Party: domain.MismatchDoctor, Expected: "dep-b", DoctorDepartmentID: "dep-a"}
	assert.ErrorIs(t, mismatch, domain.ErrDepartmentMismatch)
	assert.Contains(t, mismatch.Error(), "dep-a")
}

func TestAsPersistence(t *testing.T) {
	assert.NoError(t, domain.AsPersistence("op", nil))

	for _, business := range []error{
		domain.ErrNotFound,
		domain.ErrStockNotFound,
		domain.ErrInvalidInput,
		domain.ErrConflict,
		&domain.InsufficientStockError{},
		&domain.DepartmentMismatchError{},
	} {
		assert.Same(t, business, domain.AsPersistence("op", business))
	}

	cause := errors.New("connection refused")
	err := domain.AsPersistence("crear dispensación", cause)

	var pe *domain.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "crear dispensación", pe.Op)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused")

	assert.Same(t, err, domain.AsPersistence("otra", err))
}
