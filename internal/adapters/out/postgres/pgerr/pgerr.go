// Package pgerr translates PostgreSQL failures caused by competing transactions
// into errs.ConcurrencyConflictError.
package pgerr

import (
	"errors"

	"lastmile/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes raised when PostgreSQL aborts a statement in favour of another transaction.
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeLockNotAvailable     = "55P03"
)

// IsConflict reports whether err carries one of the conflict SQLSTATE codes.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case CodeSerializationFailure, CodeDeadlockDetected, CodeLockNotAvailable:
		return true
	default:
		return false
	}
}

// Conflict wraps err into a ConcurrencyConflictError for the named aggregate when
// PostgreSQL aborted it because of a competing transaction. Other errors, nil
// included, are returned unchanged.
func Conflict(err error, paramName string, id any, version int) error {
	if !IsConflict(err) {
		return err
	}
	return errs.NewConcurrencyConflictErrorWithCause(paramName, id, version, err)
}
