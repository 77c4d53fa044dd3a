package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/elokman/health-api/pkg/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
	codeCheckViolation      = "23514"
)

// translate maps driver errors onto AppErrors. op names the failed action.
func translate(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(resource, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return apperrors.NewConflict(fmt.Sprintf("%s already exists", resource), err)
		case codeForeignKeyViolation:
			return apperrors.NewBadRequest("referenced record does not exist", err)
		case codeInvalidTextRepr, codeCheckViolation:
			return apperrors.NewBadRequest("invalid input syntax", err)
		}
	}

	return fmt.Errorf("failed to %s %s: %w", op, resource, err)
}
