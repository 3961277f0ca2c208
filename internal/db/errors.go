package db

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/diachron-labs/driftd/internal/domain"
)

// MapError translates driver-level failures into domain error categories.
// Domain errors and everything else pass through untouched.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsBusy(err):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case IsCheckViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrReferential, err)
	default:
		return err
	}
}

// IsForeignKeyViolation reports whether err is a foreign-key constraint
// violation (a dangling reference).
func IsForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
