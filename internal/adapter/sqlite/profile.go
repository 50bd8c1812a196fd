package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ProfileRepo stores learner profiles, their concept records and the
// append-only interaction history.
type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

type weakArea struct {
	ConceptID      string `json:"conceptId"`
	MasteryLevel   int    `json:"masteryLevel"`
	RecentMistakes int    `json:"recentMistakes"`
}

// Get returns domain.ErrNotFound when the learner has no profile.
func (r *ProfileRepo) Get(ctx context.Context, learnerID string) (*domain.LearnerProfile, error) {
	c := connFromCtx(ctx, r.db)

	var (
		weak             string
		last             sql.NullInt64
		created, updated int64
	)
	p := &domain.LearnerProfile{
		LearnerID: learnerID,
		Concepts:  make(map[string]*domain.ConceptRecord),
	}

	err := c.QueryRowContext(ctx,
		`SELECT daily_budget_minutes, weak_areas, streak_current, streak_longest, last_activity, created_at, updated_at
		 FROM learner_profiles WHERE learner_id = ?`,
		learnerID,
	).Scan(&p.DailyBudgetMinutes, &weak, &p.Streak.Current, &p.Streak.Longest, &last, &created, &updated)
	if err != nil {
		return nil, mapError(err, "learner_profile", learnerID)
	}
	p.Streak.LastActivity = timePtr(last)
	p.CreatedAt = fromMicros(created)
	p.UpdatedAt = fromMicros(updated)

	var areas []weakArea
	if err := json.Unmarshal([]byte(weak), &areas); err != nil {
		return nil, fmt.Errorf("learner_profile %s: decode weak areas: %w", learnerID, err)
	}
	p.WeakAreas = make([]domain.WeakArea, len(areas))
	for i, w := range areas {
		p.WeakAreas[i] = domain.WeakArea(w)
	}

	if err := loadConcepts(ctx, c, p); err != nil {
		return nil, err
	}
	if err := loadHistory(ctx, c, p); err != nil {
		return nil, err
	}
	return p, nil
}

func loadConcepts(ctx context.Context, c conn, p *domain.LearnerProfile) error {
	rows, err := c.QueryContext(ctx,
		`SELECT concept_id, mastery_level, repetition_count, last_reviewed, next_review
		 FROM concept_records WHERE learner_id = ?`,
		p.LearnerID,
	)
	if err != nil {
		return mapError(err, "concept_record", p.LearnerID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec            = &domain.ConceptRecord{Interactions: []domain.Interaction{}, Mistakes: []domain.Mistake{}}
			reviewed, next sql.NullInt64
		)
		if err := rows.Scan(&rec.ConceptID, &rec.MasteryLevel, &rec.RepetitionCount, &reviewed, &next); err != nil {
			return fmt.Errorf("scan concept_record: %w", err)
		}
		rec.LastReviewed = timePtr(reviewed)
		rec.NextReview = timePtr(next)
		p.Concepts[rec.ConceptID] = rec
	}
	return rows.Err()
}

// loadHistory appends interactions in recorded order and derives mistakes
// from the failed ones.
func loadHistory(ctx context.Context, c conn, p *domain.LearnerProfile) error {
	rows, err := c.QueryContext(ctx,
		`SELECT concept_id, occurred_at, kind, success, difficulty, time_spent
		 FROM concept_interactions WHERE learner_id = ?
		 ORDER BY concept_id, seq`,
		p.LearnerID,
	)
	if err != nil {
		return mapError(err, "concept_interaction", p.LearnerID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conceptID, kind, difficulty string
			at, spent                   int64
			success                     bool
		)
		if err := rows.Scan(&conceptID, &at, &kind, &success, &difficulty, &spent); err != nil {
			return fmt.Errorf("scan concept_interaction: %w", err)
		}

		rec, ok := p.Concepts[conceptID]
		if !ok {
			continue
		}
		in := domain.Interaction{
			Timestamp:  fromMicros(at),
			Kind:       domain.InteractionKind(kind),
			Success:    success,
			Difficulty: domain.Difficulty(difficulty),
			TimeSpent:  time.Duration(spent),
		}
		rec.Interactions = append(rec.Interactions, in)
		if !success {
			rec.Mistakes = append(rec.Mistakes, domain.Mistake{Timestamp: in.Timestamp, Difficulty: in.Difficulty, Kind: in.Kind})
		}
	}
	return rows.Err()
}

// Save upserts the profile row only; concept records go through SaveConcept.
func (r *ProfileRepo) Save(ctx context.Context, p *domain.LearnerProfile) error {
	areas := make([]weakArea, len(p.WeakAreas))
	for i, w := range p.WeakAreas {
		areas[i] = weakArea(w)
	}
	weak, err := json.Marshal(areas)
	if err != nil {
		return fmt.Errorf("learner_profile %s: encode weak areas: %w", p.LearnerID, err)
	}

	query, args, err := builder.
		Insert("learner_profiles").
		Columns("learner_id", "daily_budget_minutes", "weak_areas", "streak_current", "streak_longest", "last_activity", "created_at", "updated_at").
		Values(p.LearnerID, p.DailyBudgetMinutes, string(weak), p.Streak.Current, p.Streak.Longest,
			nullMicros(p.Streak.LastActivity), toMicros(p.CreatedAt), toMicros(p.UpdatedAt)).
		Suffix(`ON CONFLICT (learner_id) DO UPDATE SET
			daily_budget_minutes = excluded.daily_budget_minutes,
			weak_areas = excluded.weak_areas,
			streak_current = excluded.streak_current,
			streak_longest = excluded.streak_longest,
			last_activity = excluded.last_activity,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save profile: %w", err)
	}

	if _, err := connFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "learner_profile", p.LearnerID)
	}
	return nil
}

// SaveConcept upserts the record and appends interactions past the stored
// history length.
func (r *ProfileRepo) SaveConcept(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error {
	c := connFromCtx(ctx, r.db)
	key := learnerID + "/" + rec.ConceptID

	query, args, err := builder.
		Insert("concept_records").
		Columns("learner_id", "concept_id", "mastery_level", "repetition_count", "last_reviewed", "next_review").
		Values(learnerID, rec.ConceptID, rec.MasteryLevel, rec.RepetitionCount, nullMicros(rec.LastReviewed), nullMicros(rec.NextReview)).
		Suffix(`ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			repetition_count = excluded.repetition_count,
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save concept: %w", err)
	}
	if _, err := c.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "concept_record", key)
	}

	var stored int
	err = c.QueryRowContext(ctx,
		`SELECT count(*) FROM concept_interactions WHERE learner_id = ? AND concept_id = ?`,
		learnerID, rec.ConceptID,
	).Scan(&stored)
	if err != nil {
		return mapError(err, "concept_record", key)
	}
	if stored >= len(rec.Interactions) {
		return nil
	}

	ins := builder.
		Insert("concept_interactions").
		Columns("learner_id", "concept_id", "seq", "occurred_at", "kind", "success", "difficulty", "time_spent")
	for seq := stored; seq < len(rec.Interactions); seq++ {
		in := rec.Interactions[seq]
		ins = ins.Values(learnerID, rec.ConceptID, seq, toMicros(in.Timestamp), string(in.Kind), in.Success, string(in.Difficulty), int64(in.TimeSpent))
	}
	query, args, err = ins.Suffix("ON CONFLICT (learner_id, concept_id, seq) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build append interactions: %w", err)
	}
	if _, err := c.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "concept_interaction", key)
	}
	return nil
}

// Delete removes the profile together with its records and history.
func (r *ProfileRepo) Delete(ctx context.Context, learnerID string) error {
	res, err := connFromCtx(ctx, r.db).ExecContext(ctx, `DELETE FROM learner_profiles WHERE learner_id = ?`, learnerID)
	if err != nil {
		return mapError(err, "learner_profile", learnerID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("learner_profile %s: %w", learnerID, domain.ErrNotFound)
	}
	return nil
}
