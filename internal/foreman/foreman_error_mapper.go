package foreman

import (
	"errors"
	"strings"

	foremanerrors "go-crewpay/internal/foreman/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Backstop behind the pre-write pair check; the unique index catches the
// race the existence query cannot.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_foreman_ledgers_pair" {
			return foremanerrors.ErrDuplicateAssignment
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_foreman_ledgers_pair") {
		return foremanerrors.ErrDuplicateAssignment
	}

	return err
}
