package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
)

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los repositorios.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// pgCode devuelve el SQLSTATE de un *pgconn.PgError o vacío.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// wrapErr traduce errores de PostgreSQL conocidos a errores de dominio y envuelve el resto con op.
// El texto de los constraints nunca llega al llamador.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.ErrConflict
	case codeForeignKeyViolation:
		return domain.ErrNotFound
	case codeCheckViolation, codeInvalidText:
		return domain.ErrInvalidInput
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFoundOr devuelve notFound si err es pgx.ErrNoRows; en otro caso delega en wrapErr.
func notFoundOr(op string, err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return wrapErr(op, err)
}
