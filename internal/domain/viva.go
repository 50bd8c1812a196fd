package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a validation session.
// Transitions: Pending -> Answering -> Finalized. Finalized is terminal.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusAnswering SessionStatus = "ANSWERING"
	SessionStatusFinalized SessionStatus = "FINALIZED"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPending, SessionStatusAnswering, SessionStatusFinalized:
		return true
	}
	return false
}

// Verdict is the outcome of a finalized session.
type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictFlagged  Verdict = "FLAGGED"
)

func (v Verdict) String() string { return string(v) }

// SubmissionAnalysis holds complexity signals extracted from a submission.
type SubmissionAnalysis struct {
	Complexity          string
	KeyConcepts         []string
	PotentialWeaknesses []string
	DecisionPoints      []string
	Dependencies        []string
}

// ValidationQuestion is one follow-up question about a submission.
type ValidationQuestion struct {
	Index         int
	Text          string
	FocusArea     string
	ExpectedDepth string
}

// Evaluation is the judge's assessment of one answer.
type Evaluation struct {
	Score    int
	Passed   bool
	RedFlags []string
	Feedback string
}

// Answer is an evaluated learner response. Answers are stored in question order.
type Answer struct {
	QuestionIndex int
	Question      string
	Text          string
	Evaluation    Evaluation
	JudgeFailed   bool
	AnsweredAt    time.Time
}

// ValidationResult is computed once at finalization.
type ValidationResult struct {
	Verdict      Verdict
	AverageScore float64
	PassRate     float64
	Summary      string
	RedFlags     []string
	Feedback     []string
	NextSteps    []string
}

// ValidationSession is the mini-viva for one submission.
type ValidationSession struct {
	ID             uuid.UUID
	LearnerID      string
	Submission     string
	SubmissionType string
	Analysis       SubmissionAnalysis
	Questions      []ValidationQuestion
	Answers        []Answer
	Status         SessionStatus
	Result         *ValidationResult
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FinalizedAt    *time.Time
}

// NextQuestionIndex is the only index accepted by the next answer.
func (s *ValidationSession) NextQuestionIndex() int { return len(s.Answers) }

// IsComplete reports whether every question has been answered.
func (s *ValidationSession) IsComplete() bool {
	return len(s.Answers) >= len(s.Questions)
}

// IsFinalized reports whether the session reached its terminal state.
func (s *ValidationSession) IsFinalized() bool {
	return s.Status == SessionStatusFinalized
}
