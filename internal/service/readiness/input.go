package readiness

import (
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// RecordInteractionInput holds the parameters for recording an interaction.
type RecordInteractionInput struct {
	LearnerID  string
	ConceptID  string
	Kind       domain.InteractionKind
	Success    bool
	Difficulty domain.Difficulty
	TimeSpent  time.Duration
}

// Validate checks all fields and collects all errors.
// Empty Kind and Difficulty are accepted and defaulted by the service.
func (i *RecordInteractionInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.ConceptID == "" {
		errs = append(errs, domain.FieldError{Field: "concept_id", Message: "required"})
	}
	if len(i.ConceptID) > 200 {
		errs = append(errs, domain.FieldError{Field: "concept_id", Message: "max 200 characters"})
	}
	if i.Kind != "" && !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be practice, question, evaluation, review, or viva"})
	}
	if i.Difficulty != "" && !i.Difficulty.IsValid() {
		errs = append(errs, domain.FieldError{Field: "difficulty", Message: "must be easy, medium, or hard"})
	}
	if i.TimeSpent < 0 {
		errs = append(errs, domain.FieldError{Field: "time_spent", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SetBudgetInput holds the parameters for changing the daily review budget.
type SetBudgetInput struct {
	LearnerID string
	Minutes   int
}

// Validate checks all fields and collects all errors.
func (i *SetBudgetInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Minutes < 5 || i.Minutes > 480 {
		errs = append(errs, domain.FieldError{Field: "minutes", Message: "must be between 5 and 480"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
