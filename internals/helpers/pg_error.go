package helper

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	PGUniqueViolation     = "23505"
	PGForeignKeyViolation = "23503"
	PGCheckViolation      = "23514"
	PGNumericOutOfRange   = "22003"
)

// PGCode returns the SQLSTATE of a postgres error from either driver, or "".
func PGCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return PGCode(err) == PGUniqueViolation
}

// MapPGError maps constraint violations to HTTP status + message.
func MapPGError(err error) (int, string) {
	switch PGCode(err) {
	case PGUniqueViolation:
		return http.StatusConflict, "duplicate data (unique violation)"
	case PGForeignKeyViolation:
		return http.StatusBadRequest, "referenced record not found (foreign key violation)"
	case PGCheckViolation:
		return http.StatusBadRequest, "value rejected by check constraint"
	case PGNumericOutOfRange:
		return http.StatusBadRequest, "numeric value out of range"
	}
	return http.StatusInternalServerError, "internal server error"
}
