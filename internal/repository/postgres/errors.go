package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isPgDuplicateError checks if error is a unique constraint violation
func isPgDuplicateError(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// isPgNoRowsError checks if error is a "no rows" error
func isPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isPgForeignKeyError checks if error is a foreign key violation, e.g. a
// parent_id or folder_id that references no folder
func isPgForeignKeyError(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// isPgCheckError checks if error is a check constraint violation
func isPgCheckError(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}
