package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/pkg/keylock"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type profileRepo interface {
	Get(ctx context.Context, learnerID string) (*domain.LearnerProfile, error)
	Save(ctx context.Context, p *domain.LearnerProfile) error
	SaveConcept(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error
	Delete(ctx context.Context, learnerID string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the readiness scheduler. Writes are serialized per
// learner; reads of different learners never wait on each other.
type Service struct {
	profiles      profileRepo
	tx            txManager
	locks         keylock.Map
	log           *slog.Logger
	policy        Policy
	defaultBudget int
	now           func() time.Time
}

// NewService creates a new readiness Service.
func NewService(log *slog.Logger, profiles profileRepo, tx txManager, policy Policy, defaultBudgetMinutes int) *Service {
	return &Service{
		profiles:      profiles,
		tx:            tx,
		log:           log.With("service", "readiness"),
		policy:        policy,
		defaultBudget: defaultBudgetMinutes,
		now:           time.Now,
	}
}

// RecordInteraction appends an interaction to the concept, recomputes mastery
// and the next review date, and persists the updated profile.
func (s *Service) RecordInteraction(ctx context.Context, input RecordInteractionInput) (*domain.ConceptRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Kind == "" {
		input.Kind = domain.InteractionPractice
	}
	if input.Difficulty == "" {
		input.Difficulty = domain.DifficultyMedium
	}

	unlock := s.locks.Lock(input.LearnerID)
	defer unlock()

	now := s.now()

	profile, err := s.loadOrInit(ctx, input.LearnerID, now)
	if err != nil {
		return nil, err
	}

	rec := ApplyInteraction(profile, input.ConceptID, domain.Interaction{
		Timestamp:  now,
		Kind:       input.Kind,
		Success:    input.Success,
		Difficulty: input.Difficulty,
		TimeSpent:  input.TimeSpent,
	}, now, s.policy)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.profiles.Save(txCtx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := s.profiles.SaveConcept(txCtx, input.LearnerID, rec); err != nil {
			return fmt.Errorf("save concept: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "interaction recorded",
		slog.String("learner_id", input.LearnerID),
		slog.String("concept_id", input.ConceptID),
		slog.Bool("success", input.Success),
		slog.Int("mastery", rec.MasteryLevel),
		slog.Time("next_review", *rec.NextReview),
	)

	return rec, nil
}

// GetDailyQueue returns today's review queue within the learner's budget.
func (s *Service) GetDailyQueue(ctx context.Context, learnerID string) (domain.ReviewQueue, error) {
	profile, err := s.GetProfile(ctx, learnerID)
	if err != nil {
		return domain.ReviewQueue{}, err
	}

	budget := profile.DailyBudgetMinutes
	if budget <= 0 {
		budget = s.defaultBudget
	}

	return BuildReviewQueue(profile, s.now(), budget), nil
}

// GetResearchSuggestions returns up to count deep research topics.
// A non-positive count uses the configured default.
func (s *Service) GetResearchSuggestions(ctx context.Context, learnerID string, count int) ([]domain.ResearchSuggestion, error) {
	if count <= 0 {
		count = s.policy.ResearchCount
	}

	profile, err := s.GetProfile(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return ResearchSuggestions(profile, s.now(), count, s.policy), nil
}

// GetStats returns aggregate statistics for the learner.
func (s *Service) GetStats(ctx context.Context, learnerID string) (domain.LearnerStats, error) {
	profile, err := s.GetProfile(ctx, learnerID)
	if err != nil {
		return domain.LearnerStats{}, err
	}
	return Stats(profile), nil
}

// GetProfile returns the learner profile. An unknown learner gets a fresh,
// unsaved profile; it is persisted on the first recorded interaction.
func (s *Service) GetProfile(ctx context.Context, learnerID string) (*domain.LearnerProfile, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}
	return s.loadOrInit(ctx, learnerID, s.now())
}

// SetDailyBudget changes the learner's daily review budget.
func (s *Service) SetDailyBudget(ctx context.Context, input SetBudgetInput) (*domain.LearnerProfile, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(input.LearnerID)
	defer unlock()

	now := s.now()
	profile, err := s.loadOrInit(ctx, input.LearnerID, now)
	if err != nil {
		return nil, err
	}

	profile.DailyBudgetMinutes = input.Minutes
	profile.UpdatedAt = now

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.log.InfoContext(ctx, "daily budget updated",
		slog.String("learner_id", input.LearnerID),
		slog.Int("minutes", input.Minutes),
	)

	return profile, nil
}

// Reset deletes the learner's profile and all concept records.
func (s *Service) Reset(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return domain.NewValidationError("learner_id", "required")
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	if err := s.profiles.Delete(ctx, learnerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete profile: %w", err)
	}

	s.log.InfoContext(ctx, "learner profile reset", slog.String("learner_id", learnerID))
	return nil
}

func (s *Service) loadOrInit(ctx context.Context, learnerID string, now time.Time) (*domain.LearnerProfile, error) {
	profile, err := s.profiles.Get(ctx, learnerID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewLearnerProfile(learnerID, s.defaultBudget, now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.Concepts == nil {
		profile.Concepts = make(map[string]*domain.ConceptRecord)
	}
	return profile, nil
}
