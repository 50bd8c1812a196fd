package viva

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const (
	maxSubmissionBytes = 200 << 10
	maxAnswerBytes     = 20 << 10
)

var submissionTypes = map[string]bool{
	"code":    true,
	"essay":   true,
	"project": true,
	"other":   true,
}

// StartInput holds the parameters for opening a validation session.
type StartInput struct {
	LearnerID      string
	Submission     string
	SubmissionType string
}

// Validate checks all fields and collects all errors.
// An empty SubmissionType is accepted and defaults to "code".
func (i *StartInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Submission == "" {
		errs = append(errs, domain.FieldError{Field: "submission", Message: "required"})
	}
	if len(i.Submission) > maxSubmissionBytes {
		errs = append(errs, domain.FieldError{Field: "submission", Message: "max 200 KiB"})
	}
	if i.SubmissionType != "" && !submissionTypes[i.SubmissionType] {
		errs = append(errs, domain.FieldError{Field: "submission_type", Message: "must be code, essay, project, or other"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitAnswerInput holds the parameters for answering one question.
type SubmitAnswerInput struct {
	LearnerID     string
	SessionID     uuid.UUID
	QuestionIndex int
	Answer        string
}

// Validate checks all fields and collects all errors.
func (i *SubmitAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.QuestionIndex < 0 {
		errs = append(errs, domain.FieldError{Field: "question_index", Message: "must be non-negative"})
	}
	if i.Answer == "" {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "required"})
	}
	if len(i.Answer) > maxAnswerBytes {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "max 20 KiB"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
