package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/fathurrohman/library-management/internal"
)

// Postgres SQLSTATE codes that mean the transaction lost a race and can be
// retried by the caller.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// MapError translates driver and GORM errors into the AppError taxonomy.
// Already-typed errors pass through untouched so repositories can return
// domain errors from inside transactions.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return internal.ErrStoreTimeout.WithCause(err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateUser.WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return internal.ErrStoreConflict.WithCause(err)
		case pgUniqueViolation:
			return internal.ErrDuplicateUser.WithCause(err)
		}
	}

	return internal.NewStoreError("unexpected store failure", err)
}
