package batch

import (
	"errors"
	"strings"

	batcherrors "go-crewpay/internal/batch/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Backstop behind the pre-write triple check; the unique index catches the
// race the existence query cannot.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_batches_triple" {
			return batcherrors.ErrDuplicateBatch
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_batches_triple") {
		return batcherrors.ErrDuplicateBatch
	}

	return err
}
