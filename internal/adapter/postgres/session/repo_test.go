package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/session"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

func newSession(learnerID string, createdAt time.Time) *domain.ValidationSession {
	return &domain.ValidationSession{
		ID:             uuid.New(),
		LearnerID:      learnerID,
		Submission:     "func add(a, b int) int { return a + b }",
		SubmissionType: "code",
		Analysis: domain.SubmissionAnalysis{
			Complexity:     "beginner",
			KeyConcepts:    []string{"functions"},
			DecisionPoints: []string{"signature"},
		},
		Questions: []domain.ValidationQuestion{
			{Index: 0, Text: "Why int?", FocusArea: "types", ExpectedDepth: "basic"},
			{Index: 1, Text: "What about overflow?", FocusArea: "edge cases", ExpectedDepth: "deep"},
		},
		Answers:   []domain.Answer{},
		Status:    domain.SessionStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepo_CreateGetUpdate(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := session.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	s := newSession(testhelper.UniqueLearner("viva"), now)

	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.SessionStatusPending || got.Result != nil || len(got.Answers) != 0 {
		t.Errorf("fresh session: got %+v", got)
	}
	if len(got.Questions) != 2 || got.Questions[1].FocusArea != "edge cases" {
		t.Errorf("questions: got %+v", got.Questions)
	}
	if got.Analysis.Complexity != "beginner" || got.Analysis.KeyConcepts[0] != "functions" {
		t.Errorf("analysis: got %+v", got.Analysis)
	}

	finalizedAt := now.Add(time.Minute)
	s.Answers = append(s.Answers, domain.Answer{
		QuestionIndex: 0,
		Question:      "Why int?",
		Text:          "Inputs are whole numbers",
		Evaluation:    domain.Evaluation{Score: 72, Passed: true, RedFlags: []string{}, Feedback: "ok"},
		AnsweredAt:    now,
	})
	s.Status = domain.SessionStatusFinalized
	s.UpdatedAt = finalizedAt
	s.FinalizedAt = &finalizedAt
	s.Result = &domain.ValidationResult{
		Verdict:      domain.VerdictApproved,
		AverageScore: 72,
		PassRate:     1,
		Feedback:     []string{"Q1: ok"},
	}

	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err = repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if !got.IsFinalized() || got.Result == nil || got.Result.Verdict != domain.VerdictApproved {
		t.Errorf("finalized session: got %+v", got)
	}
	if len(got.Answers) != 1 || got.Answers[0].Evaluation.Score != 72 || !got.Answers[0].AnsweredAt.Equal(now) {
		t.Errorf("answers: got %+v", got.Answers)
	}
	if got.FinalizedAt == nil || !got.FinalizedAt.Equal(finalizedAt) {
		t.Errorf("FinalizedAt: got %v", got.FinalizedAt)
	}
}

func TestRepo_GetMissing(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := session.New(pool)

	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_UpdateForeignLearner(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := session.New(pool)
	ctx := context.Background()

	s := newSession(testhelper.UniqueLearner("owner"), time.Now().UTC())
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s.LearnerID = testhelper.UniqueLearner("intruder")
	if err := repo.Update(ctx, s); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_ListByLearner(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := session.New(pool)
	ctx := context.Background()

	learnerID := testhelper.UniqueLearner("history")
	base := time.Now().UTC().Truncate(time.Microsecond)

	var ids []uuid.UUID
	for i := range 3 {
		s := newSession(learnerID, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		ids = append(ids, s.ID)
	}
	if err := repo.Create(ctx, newSession(testhelper.UniqueLearner("else"), base)); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	got, err := repo.ListByLearner(ctx, learnerID, 2)
	if err != nil {
		t.Fatalf("ListByLearner: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Errorf("expected two most recent sessions, got %d", len(got))
	}

	empty, err := repo.ListByLearner(ctx, testhelper.UniqueLearner("nobody"), 10)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty history: got %#v, %v", empty, err)
	}
}

func TestRepo_DeleteByLearner(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := session.New(pool)
	ctx := context.Background()

	learnerID := testhelper.UniqueLearner("reset")
	keep := testhelper.UniqueLearner("keep")
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := range 2 {
		if err := repo.Create(ctx, newSession(learnerID, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	kept := newSession(keep, base)
	if err := repo.Create(ctx, kept); err != nil {
		t.Fatalf("Create kept: %v", err)
	}

	n, err := repo.DeleteByLearner(ctx, learnerID)
	if err != nil {
		t.Fatalf("DeleteByLearner: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	if _, err := repo.Get(ctx, kept.ID); err != nil {
		t.Errorf("other learner's session: %v", err)
	}
}
