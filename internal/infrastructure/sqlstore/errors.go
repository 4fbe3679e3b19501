package sqlstore

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"grocery/internal/domain/item"
)

// Postgres error codes that mean another transaction got in the way.
const (
	pqSerializationFailure pq.ErrorCode = "40001"
	pqDeadlockDetected     pq.ErrorCode = "40P01"
	pqLockNotAvailable     pq.ErrorCode = "55P03"
)

// storageError wraps a driver error with the matching domain sentinel so
// callers can classify it with errors.Is / item.KindOf.
func storageError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, item.ErrConflict, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, item.ErrStorage, err)
}
