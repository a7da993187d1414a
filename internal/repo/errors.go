package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"TodoAPI/internal/utils"

	"github.com/jackc/pgx/v5"
)

// normalize maps driver errors onto the package sentinels. The driver error
// stays in the chain.
func normalize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case utils.IsConstraintViolation(err):
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	default:
		return err
	}
}
