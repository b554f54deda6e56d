package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidTextRepr = "22P02"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgErrorCode(err) == codeUniqueViolation }

// isBadID reports a malformed uuid; callers treat it the same as a missing row.
func isBadID(err error) bool { return pgErrorCode(err) == codeInvalidTextRepr }
