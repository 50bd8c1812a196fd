// Package session implements validation session persistence using PostgreSQL.
// Analysis, questions, answers and the result are JSONB columns encoded by
// sessiondoc.
package session

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tutor-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tutor-backend/internal/adapter/sessiondoc"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Repo provides validation session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

var sessionColumns = []string{
	"id", "learner_id", "submission", "submission_type", "analysis", "questions",
	"answers", "status", "result", "created_at", "updated_at", "finalized_at",
}

const updateSQL = `
UPDATE validation_sessions
SET answers = $3, status = $4, result = $5, updated_at = $6, finalized_at = $7
WHERE id = $1 AND learner_id = $2`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a session by primary key.
// Returns domain.ErrNotFound if the session does not exist.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error) {
	sql, args, err := postgres.Builder().
		Select(sessionColumns...).
		From("validation_sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	s, err := scanSession(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "validation_session", id.String())
	}
	return s, nil
}

// ListByLearner returns up to limit sessions, most recent first.
func (r *Repo) ListByLearner(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error) {
	sql, args, err := postgres.Builder().
		Select(sessionColumns...).
		From("validation_sessions").
		Where(sq.Eq{"learner_id": learnerID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions by learner: %w", err)
	}
	defer rows.Close()

	sessions := []*domain.ValidationSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions by learner: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions by learner: %w", err)
	}
	return sessions, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new session.
func (r *Repo) Create(ctx context.Context, s *domain.ValidationSession) error {
	doc, err := sessiondoc.Encode(s)
	if err != nil {
		return fmt.Errorf("validation_session %s: %w", s.ID, err)
	}

	sql, args, err := postgres.Builder().
		Insert("validation_sessions").
		Columns(sessionColumns...).
		Values(
			s.ID, s.LearnerID, s.Submission, s.SubmissionType, doc.Analysis, doc.Questions,
			doc.Answers, string(s.Status), doc.Result, s.CreatedAt, s.UpdatedAt, s.FinalizedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create session: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "validation_session", s.ID.String())
	}
	return nil
}

// Update writes the mutable part of a session: answers, status and result.
// Returns domain.ErrNotFound if the session does not exist for its learner.
func (r *Repo) Update(ctx context.Context, s *domain.ValidationSession) error {
	doc, err := sessiondoc.Encode(s)
	if err != nil {
		return fmt.Errorf("validation_session %s: %w", s.ID, err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	ct, err := querier.Exec(ctx, updateSQL,
		s.ID, s.LearnerID, doc.Answers, string(s.Status), doc.Result, s.UpdatedAt, s.FinalizedAt,
	)
	if err != nil {
		return postgres.MapError(err, "validation_session", s.ID.String())
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("validation_session %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteByLearner removes every session of the learner.
func (r *Repo) DeleteByLearner(ctx context.Context, learnerID string) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	ct, err := querier.Exec(ctx, `DELETE FROM validation_sessions WHERE learner_id = $1`, learnerID)
	if err != nil {
		return 0, postgres.MapError(err, "validation_session", learnerID)
	}
	return int(ct.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSession(row pgx.Row) (*domain.ValidationSession, error) {
	var (
		s      domain.ValidationSession
		status string
		doc    sessiondoc.Doc
	)

	err := row.Scan(
		&s.ID, &s.LearnerID, &s.Submission, &s.SubmissionType, &doc.Analysis, &doc.Questions,
		&doc.Answers, &status, &doc.Result, &s.CreatedAt, &s.UpdatedAt, &s.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = domain.SessionStatus(status)

	if err := sessiondoc.Decode(&s, doc); err != nil {
		return nil, fmt.Errorf("validation_session %s: %w", s.ID, err)
	}
	return &s, nil
}
