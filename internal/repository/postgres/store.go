// Package postgres is the pgx-backed gateway.Gateway used by the API server.
package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
)

type Store struct{ db *pgxpool.Pool }

var (
	_ gateway.Gateway        = (*Store)(nil)
	_ gateway.AtomicAssigner = (*Store)(nil)
)

func New(db *pgxpool.Pool) *Store { return &Store{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

// wrap turns driver errors into apperr kinds. what names the missing row for
// ErrNoRows.
func wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return apperr.NotFound("referenced record not found: %s", pgErr.ConstraintName)
		case "23505": // unique_violation
			return apperr.Validation("duplicate value: %s", pgErr.ConstraintName)
		case "23514", "23502": // check_violation, not_null_violation
			return apperr.Validation("invalid value: %s", pgErr.ConstraintName)
		}
	}
	return apperr.Gateway(err, "postgres")
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// exists reports whether a row with the given id is in table. table is
// always a constant from this package.
func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// small helper to avoid fmt for placeholder numbering.
func itoa(i int) string { return strconv.Itoa(i) }
