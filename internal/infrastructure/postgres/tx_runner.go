package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/transfer"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de cada caso de uso.
var (
	_ inventory.TxRunner    = (*TxRunner)(nil)
	_ dispensation.TxRunner = (*TxRunner)(nil)
	_ consultation.TxRunner = (*TxRunner)(nil)
	_ transfer.TxRunner     = (*TxRunner)(nil)
)

// TxBeginner abre transacciones; lo cumple *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + bloqueos de fila).
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run ejecuta fn con el repositorio de stock atado a la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStockRepository(tx))
	})
}

// RunDispensation ejecuta fn con stock, dispensaciones, resolución de contexto y personal en la misma tx.
func (r *TxRunner) RunDispensation(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	dispRepo repository.DispensationRepository,
	contexts repository.ContextResolver,
	staff repository.StaffDirectory,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewStockRepository(tx),
			NewDispensationRepository(tx),
			NewContextResolver(tx),
			NewStaffDirectory(tx),
		)
	})
}

// RunConsultation ejecuta fn con los repositorios del flujo de consultas en la misma tx.
func (r *TxRunner) RunConsultation(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	consultRepo repository.ConsultationRepository,
	dispRepo repository.DispensationRepository,
	stockRepo repository.StockRepository,
	staff repository.StaffDirectory,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewTransferRepository(tx),
			NewConsultationRepository(tx),
			NewDispensationRepository(tx),
			NewStockRepository(tx),
			NewStaffDirectory(tx),
		)
	})
}

// RunTransfer ejecuta fn con traslados y consultas en la misma tx.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	consultRepo repository.ConsultationRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewTransferRepository(tx), NewConsultationRepository(tx))
	})
}
