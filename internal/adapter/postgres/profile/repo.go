// Package profile implements learner profile persistence using PostgreSQL.
// A profile row owns its concept records; interactions are append-only rows
// keyed by their position in the concept history.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tutor-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Repo provides learner profile persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profile repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type weakAreaRow struct {
	ConceptID      string `json:"conceptId"`
	MasteryLevel   int    `json:"masteryLevel"`
	RecentMistakes int    `json:"recentMistakes"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get loads the profile with every concept record and its full history.
// Returns domain.ErrNotFound if the learner has no profile.
func (r *Repo) Get(ctx context.Context, learnerID string) (*domain.LearnerProfile, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p := &domain.LearnerProfile{
		LearnerID: learnerID,
		Concepts:  make(map[string]*domain.ConceptRecord),
	}
	var weak []byte

	err := q.QueryRow(ctx,
		`SELECT daily_budget_minutes, weak_areas, streak_current, streak_longest, last_activity, created_at, updated_at
		 FROM learner_profiles WHERE learner_id = $1`,
		learnerID,
	).Scan(&p.DailyBudgetMinutes, &weak, &p.Streak.Current, &p.Streak.Longest, &p.Streak.LastActivity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "learner_profile", learnerID)
	}

	var rows []weakAreaRow
	if err := json.Unmarshal(weak, &rows); err != nil {
		return nil, fmt.Errorf("decode weak areas: %w", err)
	}
	p.WeakAreas = make([]domain.WeakArea, len(rows))
	for i, w := range rows {
		p.WeakAreas[i] = domain.WeakArea(w)
	}

	if err := r.loadConcepts(ctx, q, p); err != nil {
		return nil, err
	}
	if err := r.loadInteractions(ctx, q, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repo) loadConcepts(ctx context.Context, q postgres.Querier, p *domain.LearnerProfile) error {
	rows, err := q.Query(ctx,
		`SELECT concept_id, mastery_level, repetition_count, last_reviewed, next_review
		 FROM concept_records WHERE learner_id = $1`,
		p.LearnerID,
	)
	if err != nil {
		return fmt.Errorf("query concept_records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := &domain.ConceptRecord{Interactions: []domain.Interaction{}, Mistakes: []domain.Mistake{}}
		if err := rows.Scan(&rec.ConceptID, &rec.MasteryLevel, &rec.RepetitionCount, &rec.LastReviewed, &rec.NextReview); err != nil {
			return fmt.Errorf("scan concept_record: %w", err)
		}
		p.Concepts[rec.ConceptID] = rec
	}
	return rows.Err()
}

// loadInteractions rebuilds the ordered history. Mistakes are exactly the
// unsuccessful interactions, so they are derived rather than stored.
func (r *Repo) loadInteractions(ctx context.Context, q postgres.Querier, p *domain.LearnerProfile) error {
	rows, err := q.Query(ctx,
		`SELECT concept_id, occurred_at, kind, success, difficulty, time_spent
		 FROM concept_interactions WHERE learner_id = $1
		 ORDER BY concept_id, seq`,
		p.LearnerID,
	)
	if err != nil {
		return fmt.Errorf("query concept_interactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conceptID, kind, difficulty string
			in                          domain.Interaction
			spent                       int64
		)
		if err := rows.Scan(&conceptID, &in.Timestamp, &kind, &in.Success, &difficulty, &spent); err != nil {
			return fmt.Errorf("scan concept_interaction: %w", err)
		}
		in.Kind = domain.InteractionKind(kind)
		in.Difficulty = domain.Difficulty(difficulty)
		in.TimeSpent = time.Duration(spent)

		rec, ok := p.Concepts[conceptID]
		if !ok {
			continue
		}
		rec.Interactions = append(rec.Interactions, in)
		if !in.Success {
			rec.Mistakes = append(rec.Mistakes, domain.Mistake{
				Timestamp:  in.Timestamp,
				Difficulty: in.Difficulty,
				Kind:       in.Kind,
			})
		}
	}
	return rows.Err()
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Save upserts the profile row. Concept records are written by SaveConcept.
func (r *Repo) Save(ctx context.Context, p *domain.LearnerProfile) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	weak := make([]weakAreaRow, len(p.WeakAreas))
	for i, w := range p.WeakAreas {
		weak[i] = weakAreaRow(w)
	}
	weakJSON, err := json.Marshal(weak)
	if err != nil {
		return fmt.Errorf("encode weak areas: %w", err)
	}

	sql, args, err := postgres.Builder().
		Insert("learner_profiles").
		Columns("learner_id", "daily_budget_minutes", "weak_areas", "streak_current", "streak_longest", "last_activity", "created_at", "updated_at").
		Values(p.LearnerID, p.DailyBudgetMinutes, weakJSON, p.Streak.Current, p.Streak.Longest, p.Streak.LastActivity, p.CreatedAt, p.UpdatedAt).
		Suffix(`ON CONFLICT (learner_id) DO UPDATE SET
			daily_budget_minutes = EXCLUDED.daily_budget_minutes,
			weak_areas = EXCLUDED.weak_areas,
			streak_current = EXCLUDED.streak_current,
			streak_longest = EXCLUDED.streak_longest,
			last_activity = EXCLUDED.last_activity,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save profile: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "learner_profile", p.LearnerID)
	}
	return nil
}

// SaveConcept upserts the concept record and appends the interactions that
// are not stored yet. History rows are never rewritten.
func (r *Repo) SaveConcept(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	key := learnerID + "/" + rec.ConceptID

	sql, args, err := postgres.Builder().
		Insert("concept_records").
		Columns("learner_id", "concept_id", "mastery_level", "repetition_count", "last_reviewed", "next_review").
		Values(learnerID, rec.ConceptID, rec.MasteryLevel, rec.RepetitionCount, rec.LastReviewed, rec.NextReview).
		Suffix(`ON CONFLICT (learner_id, concept_id) DO UPDATE SET
			mastery_level = EXCLUDED.mastery_level,
			repetition_count = EXCLUDED.repetition_count,
			last_reviewed = EXCLUDED.last_reviewed,
			next_review = EXCLUDED.next_review`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save concept: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "concept_record", key)
	}

	var stored int
	err = q.QueryRow(ctx,
		`SELECT count(*) FROM concept_interactions WHERE learner_id = $1 AND concept_id = $2`,
		learnerID, rec.ConceptID,
	).Scan(&stored)
	if err != nil {
		return postgres.MapError(err, "concept_record", key)
	}
	if stored >= len(rec.Interactions) {
		return nil
	}

	batch := &pgx.Batch{}
	for seq := stored; seq < len(rec.Interactions); seq++ {
		in := rec.Interactions[seq]
		batch.Queue(
			`INSERT INTO concept_interactions (learner_id, concept_id, seq, occurred_at, kind, success, difficulty, time_spent)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (learner_id, concept_id, seq) DO NOTHING`,
			learnerID, rec.ConceptID, seq, in.Timestamp, string(in.Kind), in.Success, string(in.Difficulty), int64(in.TimeSpent),
		)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "concept_interaction", key)
		}
	}
	return nil
}

// Delete removes the profile. Concept records and history cascade.
// Returns domain.ErrNotFound if the learner has no profile.
func (r *Repo) Delete(ctx context.Context, learnerID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM learner_profiles WHERE learner_id = $1`, learnerID)
	if err != nil {
		return postgres.MapError(err, "learner_profile", learnerID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("learner_profile %s: %w", learnerID, domain.ErrNotFound)
	}
	return nil
}
