package domain

import "time"

// InteractionKind classifies what the learner did with a concept.
type InteractionKind string

const (
	InteractionPractice   InteractionKind = "practice"
	InteractionQuestion   InteractionKind = "question"
	InteractionEvaluation InteractionKind = "evaluation"
	InteractionReview     InteractionKind = "review"
	InteractionViva       InteractionKind = "viva"
)

func (k InteractionKind) String() string { return string(k) }

func (k InteractionKind) IsValid() bool {
	switch k {
	case InteractionPractice, InteractionQuestion, InteractionEvaluation, InteractionReview, InteractionViva:
		return true
	}
	return false
}

// Difficulty is the perceived difficulty of a single interaction.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) String() string { return string(d) }

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Interaction is one recorded piece of evidence about a concept.
type Interaction struct {
	Timestamp  time.Time
	Kind       InteractionKind
	Success    bool
	Difficulty Difficulty
	TimeSpent  time.Duration
}

// Mistake is logged for every unsuccessful interaction.
type Mistake struct {
	Timestamp  time.Time
	Difficulty Difficulty
	Kind       InteractionKind
}

// ConceptRecord holds the review state of one concept for one learner.
// MasteryLevel is always derived from the full Interactions history.
type ConceptRecord struct {
	ConceptID       string
	Interactions    []Interaction
	MasteryLevel    int
	LastReviewed    *time.Time
	NextReview      *time.Time
	RepetitionCount int
	Mistakes        []Mistake
}

// Streak tracks consecutive days of activity.
type Streak struct {
	Current      int
	Longest      int
	LastActivity *time.Time
}

// WeakArea is a concept whose mastery is below the weak threshold.
type WeakArea struct {
	ConceptID      string
	MasteryLevel   int
	RecentMistakes int
}

// LearnerProfile is the per-learner aggregate owned by the readiness scheduler.
type LearnerProfile struct {
	LearnerID          string
	Concepts           map[string]*ConceptRecord
	WeakAreas          []WeakArea
	Streak             Streak
	DailyBudgetMinutes int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewLearnerProfile returns an empty profile with the given daily budget.
func NewLearnerProfile(learnerID string, budgetMinutes int, now time.Time) *LearnerProfile {
	return &LearnerProfile{
		LearnerID:          learnerID,
		Concepts:           make(map[string]*ConceptRecord),
		DailyBudgetMinutes: budgetMinutes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// ReviewQueueItem is derived on every queue request and never persisted.
type ReviewQueueItem struct {
	ConceptID        string
	Priority         int
	EstimatedMinutes int
	MasteryLevel     int
	DaysOverdue      int
}

// Recommendation summarizes the selected queue for the learner.
type Recommendation struct {
	Concepts     []string
	TotalMinutes int
	Message      string
}

// ReviewQueue is the daily readiness queue.
type ReviewQueue struct {
	Items                 []ReviewQueueItem
	TotalDue              int
	EstimatedTotalMinutes int
	Recommendation        Recommendation
}

// SuggestionKind is the reason a deep research topic was proposed.
type SuggestionKind string

const (
	SuggestionWeakness   SuggestionKind = "weakness_reinforcement"
	SuggestionForgetting SuggestionKind = "forgetting_prevention"
	SuggestionAdvanced   SuggestionKind = "advanced_exploration"
)

// SuggestionPriority orders research suggestions for display.
type SuggestionPriority string

const (
	SuggestionPriorityHigh   SuggestionPriority = "high"
	SuggestionPriorityMedium SuggestionPriority = "medium"
	SuggestionPriorityLow    SuggestionPriority = "low"
)

// ResearchSuggestion is a proposed deep study topic.
type ResearchSuggestion struct {
	ConceptID        string
	Kind             SuggestionKind
	Priority         SuggestionPriority
	EstimatedMinutes int
	Reason           string
}

// LearnerStats is an aggregate snapshot of a learner profile.
type LearnerStats struct {
	TotalConcepts     int
	AverageMastery    int
	WeakAreas         int
	CurrentStreak     int
	LongestStreak     int
	ConceptsExcellent int
	ConceptsNeedWork  int
}
