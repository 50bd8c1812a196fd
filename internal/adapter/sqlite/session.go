package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/adapter/sessiondoc"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

var sessionColumns = []string{
	"id", "learner_id", "submission", "submission_type", "analysis", "questions",
	"answers", "status", "result", "created_at", "updated_at", "finalized_at",
}

// SessionRepo stores validation sessions with their documents as JSON text.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error) {
	query, args, err := builder.
		Select(sessionColumns...).
		From("validation_sessions").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session: %w", err)
	}

	s, err := scanSession(connFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "validation_session", id.String())
	}
	return s, nil
}

// ListByLearner returns at most limit sessions, newest first.
func (r *SessionRepo) ListByLearner(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error) {
	query, args, err := builder.
		Select(sessionColumns...).
		From("validation_sessions").
		Where(sq.Eq{"learner_id": learnerID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	rows, err := connFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "validation_session", learnerID)
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

func (r *SessionRepo) Create(ctx context.Context, s *domain.ValidationSession) error {
	doc, err := sessiondoc.Encode(s)
	if err != nil {
		return fmt.Errorf("validation_session %s: %w", s.ID, err)
	}

	query, args, err := builder.
		Insert("validation_sessions").
		Columns(sessionColumns...).
		Values(
			s.ID.String(), s.LearnerID, s.Submission, s.SubmissionType, string(doc.Analysis), string(doc.Questions),
			string(doc.Answers), string(s.Status), nullText(doc.Result),
			toMicros(s.CreatedAt), toMicros(s.UpdatedAt), nullMicros(s.FinalizedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create session: %w", err)
	}

	if _, err := connFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "validation_session", s.ID.String())
	}
	return nil
}

// Update writes answers, status and result. The learner id guards against
// updating another learner's session.
func (r *SessionRepo) Update(ctx context.Context, s *domain.ValidationSession) error {
	doc, err := sessiondoc.Encode(s)
	if err != nil {
		return fmt.Errorf("validation_session %s: %w", s.ID, err)
	}

	query, args, err := builder.
		Update("validation_sessions").
		Set("answers", string(doc.Answers)).
		Set("status", string(s.Status)).
		Set("result", nullText(doc.Result)).
		Set("updated_at", toMicros(s.UpdatedAt)).
		Set("finalized_at", nullMicros(s.FinalizedAt)).
		Where(sq.Eq{"id": s.ID.String(), "learner_id": s.LearnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update session: %w", err)
	}

	res, err := connFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "validation_session", s.ID.String())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("validation_session %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *SessionRepo) DeleteByLearner(ctx context.Context, learnerID string) (int, error) {
	res, err := connFromCtx(ctx, r.db).ExecContext(ctx, `DELETE FROM validation_sessions WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, mapError(err, "validation_session", learnerID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("validation_session %s: rows affected: %w", learnerID, err)
	}
	return int(n), nil
}

func scanSession(row rowScanner) (*domain.ValidationSession, error) {
	var (
		s                domain.ValidationSession
		id, status       string
		doc              sessiondoc.Doc
		created, updated int64
		finalized        sql.NullInt64
	)

	err := row.Scan(
		&id, &s.LearnerID, &s.Submission, &s.SubmissionType, &doc.Analysis, &doc.Questions,
		&doc.Answers, &status, &doc.Result, &created, &updated, &finalized,
	)
	if err != nil {
		return nil, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("validation_session %q: %w", id, err)
	}
	s.Status = domain.SessionStatus(status)
	s.CreatedAt = fromMicros(created)
	s.UpdatedAt = fromMicros(updated)
	s.FinalizedAt = timePtr(finalized)

	if err := sessiondoc.Decode(&s, doc); err != nil {
		return nil, fmt.Errorf("validation_session %s: %w", s.ID, err)
	}
	return &s, nil
}

// nullText stores a missing document as NULL.
func nullText(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
