package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// NamedSelect binds named parameters and selects into dest.
func NamedSelect(ctx context.Context, ext sqlx.ExtContext, dest interface{}, query string, arg interface{}) error {
	q, args, err := ext.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, ext, dest, q, args...)
}

// NamedGet binds named parameters and scans a single row into dest.
func NamedGet(ctx context.Context, ext sqlx.ExtContext, dest interface{}, query string, arg interface{}) error {
	q, args, err := ext.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, ext, dest, q, args...)
}

// GetOne runs query and scans into dest. It reports false when no row matched.
func GetOne(ctx context.Context, ext sqlx.ExtContext, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, ext, dest, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExpectOne turns a zero-row update into a conflict error.
func ExpectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return apperr.New(apperr.KindConflict, "%s was modified concurrently", what)
	}
	return nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
