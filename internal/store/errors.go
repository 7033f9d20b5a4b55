package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrReferenced       = errors.New("record is referenced by other records")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// mapPostgresError maps driver errors to the sentinels above, keeping the
// original message so admin surfaces can show it.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s (%s)", ErrConflict, pqErr.Message, pqErr.Constraint)
	case pgerrcode.ForeignKeyViolation:
		if pqErr.Detail != "" {
			return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Detail)
		}
		return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Message)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("constraint violation: %s: %w", pqErr.Constraint, err)
	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pqErr.Code, pqErr.Message, err)
	}
}
