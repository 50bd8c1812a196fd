package viva

import "github.com/heartmarshall/tutor-backend/internal/domain"

// AnswerOutcome is returned after an answer is recorded. NextQuestion is nil
// once every question has been answered, in which case the session is
// finalized and carries its result.
type AnswerOutcome struct {
	Session      *domain.ValidationSession
	Answer       domain.Answer
	NextQuestion *domain.ValidationQuestion
	Answered     int
	Total        int
}

// Finalized reports whether this answer closed the session.
func (o *AnswerOutcome) Finalized() bool { return o.Session.IsFinalized() }
