package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	stockForUpdateSQL = `SELECT .+ FROM stock_records WHERE department_id = \$1 AND medication_id = \$2 FOR UPDATE`
	stockSaveSQL      = `UPDATE stock_records SET quantity = \$3`
)

var (
	stockColumns        = []string{"department_id", "medication_id", "quantity", "min_quantity", "max_quantity", "updated_at"}
	dispensationColumns = []string{"id", "context_kind", "context_id", "medication_id", "quantity", "created_at", "updated_at"}
	fixedTime           = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func stockRow(dep, med string, qty int) *pgxmock.Rows {
	return pgxmock.NewRows(stockColumns).AddRow(dep, med, qty, 0, 20, fixedTime)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestStockRepo_GetForUpdate_LocksRow(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(stockForUpdateSQL).
		WithArgs("dep-b", "med-1").
		WillReturnRows(stockRow("dep-b", "med-1", 10))
	mock.ExpectQuery(stockForUpdateSQL).
		WithArgs("dep-b", "med-9").
		WillReturnError(pgx.ErrNoRows)

	repo := NewStockRepository(mock)
	ctx := context.Background()

	rec, err := repo.GetForUpdate(ctx, entity.StockKey{DepartmentID: "dep-b", MedicationID: "med-1"})
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	_, err = repo.GetForUpdate(ctx, entity.StockKey{DepartmentID: "dep-b", MedicationID: "med-9"})
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_Save_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		result func(e *pgxmock.ExpectedExec)
		want   error
	}{
		{
			name:   "check violation is an opaque conflict",
			result: func(e *pgxmock.ExpectedExec) { e.WillReturnError(&pgconn.PgError{Code: codeCheckViolation}) },
			want:   domain.ErrConflict,
		},
		{
			name:   "no row updated",
			result: func(e *pgxmock.ExpectedExec) { e.WillReturnResult(pgxmock.NewResult("UPDATE", 0)) },
			want:   domain.ErrStockNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.result(mock.ExpectExec(stockSaveSQL).WithArgs("dep-b", "med-1", -1, 0, 20, pgxmock.AnyArg()))

			err := NewStockRepository(mock).Save(context.Background(), &entity.StockRecord{
				DepartmentID: "dep-b", MedicationID: "med-1", Quantity: -1, MaxQuantity: 20, UpdatedAt: fixedTime,
			})
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStockRepo_List_ScansFillPercentage(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT .+ROUND\(quantity::numeric \* 100 / NULLIF\(max_quantity, 0\), 2\).+ FROM stock_records WHERE quantity < min_quantity AND department_id = \$1`).
		WithArgs("dep-b").
		WillReturnRows(pgxmock.NewRows(append(stockColumns, "fill_pct")).
			AddRow("dep-b", "med-1", 1, 5, 3, fixedTime, decimal.RequireFromString("33.33")))

	list, err := NewStockRepository(mock).ListBelowMinimum(context.Background(), "dep-b")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "med-1", list[0].MedicationID)
	assert.Equal(t, "33.33", list[0].FillPct.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDispensationRepo_GetForUpdate_LocksRow(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT .+ FROM dispensations WHERE id = \$1 FOR UPDATE`).
		WithArgs("disp-1").
		WillReturnRows(pgxmock.NewRows(dispensationColumns).
			AddRow("disp-1", "emergency", "em-1", "med-1", 3, fixedTime, fixedTime))

	d, err := NewDispensationRepository(mock).GetForUpdate(context.Background(), "disp-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ContextEmergency, d.Context.Kind)
	assert.Equal(t, 3, d.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContextResolver_SharesChainRows(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT department_id FROM emergency_cares WHERE id = \$1 FOR SHARE`).
		WithArgs("em-1").
		WillReturnRows(pgxmock.NewRows([]string{"department_id"}).AddRow("dep-a"))
	mock.ExpectQuery(`FROM consultation_derivations c JOIN derivations t ON t.id = c.derivation_id WHERE c.id = \$1 FOR SHARE`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: codeInvalidText})

	resolver := NewContextResolver(mock)
	ctx := context.Background()

	got, err := resolver.Resolve(ctx, entity.DispensationContext{Kind: entity.ContextEmergency, ID: "em-1"})
	require.NoError(t, err)
	assert.Equal(t, "dep-a", got.DepartmentID)

	_, err = resolver.Resolve(ctx, entity.DispensationContext{Kind: entity.ContextDerivation, ID: "not-a-uuid"})
	assert.ErrorIs(t, err, domain.ErrContextNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_CreateDispensation_LocksStockBeforeWriting(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT department_id FROM emergency_cares WHERE id = \$1 FOR SHARE`).
		WithArgs("em-1").
		WillReturnRows(pgxmock.NewRows([]string{"department_id"}).AddRow("dep-a"))
	mock.ExpectQuery(stockForUpdateSQL).
		WithArgs("dep-a", "med-1").
		WillReturnRows(stockRow("dep-a", "med-1", 10))
	mock.ExpectExec(stockSaveSQL).
		WithArgs("dep-a", "med-1", 7, 0, 20, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO dispensations`).
		WithArgs(pgxmock.AnyArg(), "emergency", "em-1", "med-1", 3, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	coord := dispensation.NewCoordinator(NewTxRunner(mock), logger.Nop())
	out, err := coord.Create(context.Background(), dto.CreateDispensationRequest{
		ContextKind: "emergency", ContextID: "em-1", MedicationID: "med-1", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_CreateDispensation_InsufficientRollsBack(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT department_id FROM emergency_cares WHERE id = \$1 FOR SHARE`).
		WithArgs("em-1").
		WillReturnRows(pgxmock.NewRows([]string{"department_id"}).AddRow("dep-a"))
	mock.ExpectQuery(stockForUpdateSQL).
		WithArgs("dep-a", "med-1").
		WillReturnRows(stockRow("dep-a", "med-1", 2))
	mock.ExpectRollback()

	coord := dispensation.NewCoordinator(NewTxRunner(mock), logger.Nop())
	_, err := coord.Create(context.Background(), dto.CreateDispensationRequest{
		ContextKind: "emergency", ContextID: "em-1", MedicationID: "med-1", Quantity: 3,
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)
	require.NoError(t, mock.ExpectationsWereMet())
}
