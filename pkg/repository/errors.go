package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTableCode = "42P01"

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows and PostgreSQL undefined-table (42P01) to notFoundErr.
// Other errors are returned unchanged.
func MapError(err error, notFoundErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTableCode {
		return notFoundErr
	}

	return err
}
