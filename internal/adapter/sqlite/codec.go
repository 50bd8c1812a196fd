package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Timestamps are stored as UTC unix microseconds, the precision PostgreSQL
// keeps as well.

func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }

func nullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMicros(v.Int64)
	return &t
}

// mapError annotates err with entity and key and translates SQLite result
// codes into domain sentinels.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s %s: %w", entity, key, err)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		var mapped error
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			mapped = domain.ErrAlreadyExists
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			mapped = domain.ErrNotFound
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			mapped = domain.ErrValidation
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			mapped = domain.ErrConflict
		}
		if mapped != nil {
			return fmt.Errorf("%s %s: %w (%w)", entity, key, mapped, err)
		}
	}
	return fmt.Errorf("%s %s: %w", entity, key, err)
}
