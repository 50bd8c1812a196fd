package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/profile"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

func newProfile(learnerID string, now time.Time) *domain.LearnerProfile {
	p := domain.NewLearnerProfile(learnerID, 30, now)
	p.Streak = domain.Streak{Current: 2, Longest: 5, LastActivity: &now}
	p.WeakAreas = []domain.WeakArea{{ConceptID: "graphs", MasteryLevel: 40, RecentMistakes: 2}}
	return p
}

func TestRepo_SaveAndGet(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := profile.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	learnerID := testhelper.UniqueLearner("profile")
	p := newProfile(learnerID, now)

	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	next := now.Add(72 * time.Hour)
	rec := &domain.ConceptRecord{
		ConceptID: "graphs",
		Interactions: []domain.Interaction{
			{Timestamp: now.Add(-time.Hour), Kind: domain.InteractionPractice, Success: false, Difficulty: domain.DifficultyHard, TimeSpent: 90 * time.Second},
			{Timestamp: now, Kind: domain.InteractionQuestion, Success: true, Difficulty: domain.DifficultyMedium},
		},
		MasteryLevel:    55,
		LastReviewed:    &now,
		NextReview:      &next,
		RepetitionCount: 2,
	}
	if err := repo.SaveConcept(ctx, learnerID, rec); err != nil {
		t.Fatalf("SaveConcept: %v", err)
	}

	got, err := repo.Get(ctx, learnerID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.DailyBudgetMinutes != 30 || got.Streak.Current != 2 || got.Streak.Longest != 5 {
		t.Errorf("profile fields: got %+v", got)
	}
	if got.Streak.LastActivity == nil || !got.Streak.LastActivity.Equal(now) {
		t.Errorf("LastActivity: got %v, want %v", got.Streak.LastActivity, now)
	}
	if len(got.WeakAreas) != 1 || got.WeakAreas[0] != p.WeakAreas[0] {
		t.Errorf("WeakAreas: got %+v", got.WeakAreas)
	}

	c, ok := got.Concepts["graphs"]
	if !ok {
		t.Fatal("concept graphs not loaded")
	}
	if c.MasteryLevel != 55 || c.RepetitionCount != 2 || !c.NextReview.Equal(next) {
		t.Errorf("concept: got %+v", c)
	}
	if len(c.Interactions) != 2 || c.Interactions[0].TimeSpent != 90*time.Second || c.Interactions[1].Kind != domain.InteractionQuestion {
		t.Errorf("interactions: got %+v", c.Interactions)
	}
	if len(c.Mistakes) != 1 || c.Mistakes[0].Difficulty != domain.DifficultyHard {
		t.Errorf("mistakes: got %+v", c.Mistakes)
	}
}

func TestRepo_SaveConcept_AppendsHistory(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := profile.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	learnerID := testhelper.UniqueLearner("append")
	if err := repo.Save(ctx, newProfile(learnerID, now)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := &domain.ConceptRecord{ConceptID: "sorting", MasteryLevel: 100, RepetitionCount: 1}
	for i := range 3 {
		rec.Interactions = append(rec.Interactions, domain.Interaction{
			Timestamp:  now.Add(time.Duration(i) * time.Minute),
			Kind:       domain.InteractionPractice,
			Success:    true,
			Difficulty: domain.DifficultyEasy,
		})
		rec.RepetitionCount = i + 1
		if err := repo.SaveConcept(ctx, learnerID, rec); err != nil {
			t.Fatalf("SaveConcept #%d: %v", i, err)
		}
	}

	got, err := repo.Get(ctx, learnerID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	c := got.Concepts["sorting"]
	if len(c.Interactions) != 3 || c.RepetitionCount != 3 {
		t.Fatalf("got %d interactions, repetition %d", len(c.Interactions), c.RepetitionCount)
	}
	for i, in := range c.Interactions {
		if want := now.Add(time.Duration(i) * time.Minute); !in.Timestamp.Equal(want) {
			t.Errorf("interaction %d out of order: %v", i, in.Timestamp)
		}
	}
}

func TestRepo_SaveConcept_UnknownProfile(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := profile.New(pool)

	err := repo.SaveConcept(context.Background(), testhelper.UniqueLearner("ghost"), &domain.ConceptRecord{ConceptID: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing profile, got %v", err)
	}
}

func TestRepo_GetMissing(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := profile.New(pool)

	_, err := repo.Get(context.Background(), testhelper.UniqueLearner("missing"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_DeleteCascades(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := profile.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	learnerID := testhelper.UniqueLearner("delete")
	if err := repo.Save(ctx, newProfile(learnerID, now)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec := &domain.ConceptRecord{
		ConceptID:    "trees",
		Interactions: []domain.Interaction{{Timestamp: now, Kind: domain.InteractionReview, Difficulty: domain.DifficultyMedium}},
	}
	if err := repo.SaveConcept(ctx, learnerID, rec); err != nil {
		t.Fatalf("SaveConcept: %v", err)
	}

	if err := repo.Delete(ctx, learnerID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var left int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM concept_interactions WHERE learner_id = $1`, learnerID).Scan(&left); err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 0 {
		t.Errorf("interactions left after delete: %d", left)
	}

	if err := repo.Delete(ctx, learnerID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}
