package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Builder is the squirrel builder for PostgreSQL ($N placeholders).
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// sqlStates maps the SQLSTATE codes repositories care about onto domain
// sentinels. Anything else is returned wrapped but unmapped.
var sqlStates = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"23502": domain.ErrValidation,    // not_null_violation
	"22001": domain.ErrValidation,    // string_data_right_truncation
	"40001": domain.ErrConflict,      // serialization_failure
	"40P01": domain.ErrConflict,      // deadlock_detected
}

// MapError annotates err with entity and key and translates driver errors
// into domain sentinels. Context errors keep their identity, and a mapped
// *pgconn.PgError stays in the chain so the tx manager can still detect
// conflicts.
func MapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	cause := err
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	case errors.Is(err, pgx.ErrNoRows):
		cause = domain.ErrNotFound
	case errors.As(err, &pgErr):
		if mapped, ok := sqlStates[pgErr.Code]; ok {
			return fmt.Errorf("%s %s: %w (%w)", entity, key, mapped, err)
		}
	}
	return fmt.Errorf("%s %s: %w", entity, key, cause)
}
