package router

import (
	"context"
	"sync"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/coach"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

// Ensure, that the mocks implement their interfaces.
var (
	_ tutor           = &tutorMock{}
	_ validator       = &validatorMock{}
	_ scheduler       = &schedulerMock{}
	_ contextProvider = &contextProviderMock{}
	_ classifier      = &classifierMock{}
)

// tutorMock is a mock implementation of tutor.
type tutorMock struct {
	SocraticFunc  func(ctx context.Context, in coach.SocraticInput) (*coach.SocraticReply, error)
	EvaluateFunc  func(ctx context.Context, in coach.EvaluateInput) (*coach.RubricEvaluation, error)
	TranslateFunc func(ctx context.Context, in coach.TranslateInput) (*coach.Translation, error)

	calls struct {
		Socratic  []coach.SocraticInput
		Evaluate  []coach.EvaluateInput
		Translate []coach.TranslateInput
	}
	lock sync.RWMutex
}

func (mock *tutorMock) Socratic(ctx context.Context, in coach.SocraticInput) (*coach.SocraticReply, error) {
	if mock.SocraticFunc == nil {
		panic("tutorMock.SocraticFunc: method is nil but tutor.Socratic was just called")
	}
	mock.lock.Lock()
	mock.calls.Socratic = append(mock.calls.Socratic, in)
	mock.lock.Unlock()
	return mock.SocraticFunc(ctx, in)
}

func (mock *tutorMock) Evaluate(ctx context.Context, in coach.EvaluateInput) (*coach.RubricEvaluation, error) {
	if mock.EvaluateFunc == nil {
		panic("tutorMock.EvaluateFunc: method is nil but tutor.Evaluate was just called")
	}
	mock.lock.Lock()
	mock.calls.Evaluate = append(mock.calls.Evaluate, in)
	mock.lock.Unlock()
	return mock.EvaluateFunc(ctx, in)
}

func (mock *tutorMock) Translate(ctx context.Context, in coach.TranslateInput) (*coach.Translation, error) {
	if mock.TranslateFunc == nil {
		panic("tutorMock.TranslateFunc: method is nil but tutor.Translate was just called")
	}
	mock.lock.Lock()
	mock.calls.Translate = append(mock.calls.Translate, in)
	mock.lock.Unlock()
	return mock.TranslateFunc(ctx, in)
}

// SocraticCalls gets all the calls that were made to Socratic.
func (mock *tutorMock) SocraticCalls() []coach.SocraticInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Socratic
}

// EvaluateCalls gets all the calls that were made to Evaluate.
func (mock *tutorMock) EvaluateCalls() []coach.EvaluateInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Evaluate
}

// TranslateCalls gets all the calls that were made to Translate.
func (mock *tutorMock) TranslateCalls() []coach.TranslateInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Translate
}

// validatorMock is a mock implementation of validator.
type validatorMock struct {
	StartFunc        func(ctx context.Context, input viva.StartInput) (*domain.ValidationSession, error)
	SubmitAnswerFunc func(ctx context.Context, input viva.SubmitAnswerInput) (*viva.AnswerOutcome, error)

	calls struct {
		Start        []viva.StartInput
		SubmitAnswer []viva.SubmitAnswerInput
	}
	lock sync.RWMutex
}

func (mock *validatorMock) Start(ctx context.Context, input viva.StartInput) (*domain.ValidationSession, error) {
	if mock.StartFunc == nil {
		panic("validatorMock.StartFunc: method is nil but validator.Start was just called")
	}
	mock.lock.Lock()
	mock.calls.Start = append(mock.calls.Start, input)
	mock.lock.Unlock()
	return mock.StartFunc(ctx, input)
}

func (mock *validatorMock) SubmitAnswer(ctx context.Context, input viva.SubmitAnswerInput) (*viva.AnswerOutcome, error) {
	if mock.SubmitAnswerFunc == nil {
		panic("validatorMock.SubmitAnswerFunc: method is nil but validator.SubmitAnswer was just called")
	}
	mock.lock.Lock()
	mock.calls.SubmitAnswer = append(mock.calls.SubmitAnswer, input)
	mock.lock.Unlock()
	return mock.SubmitAnswerFunc(ctx, input)
}

// StartCalls gets all the calls that were made to Start.
func (mock *validatorMock) StartCalls() []viva.StartInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Start
}

// SubmitAnswerCalls gets all the calls that were made to SubmitAnswer.
func (mock *validatorMock) SubmitAnswerCalls() []viva.SubmitAnswerInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.SubmitAnswer
}

// schedulerMock is a mock implementation of scheduler.
type schedulerMock struct {
	RecordInteractionFunc      func(ctx context.Context, input readiness.RecordInteractionInput) (*domain.ConceptRecord, error)
	GetDailyQueueFunc          func(ctx context.Context, learnerID string) (domain.ReviewQueue, error)
	GetResearchSuggestionsFunc func(ctx context.Context, learnerID string, count int) ([]domain.ResearchSuggestion, error)
	GetStatsFunc               func(ctx context.Context, learnerID string) (domain.LearnerStats, error)

	calls struct {
		RecordInteraction      []readiness.RecordInteractionInput
		GetDailyQueue          []string
		GetResearchSuggestions []int
		GetStats               []string
	}
	lock sync.RWMutex
}

func (mock *schedulerMock) RecordInteraction(ctx context.Context, input readiness.RecordInteractionInput) (*domain.ConceptRecord, error) {
	if mock.RecordInteractionFunc == nil {
		panic("schedulerMock.RecordInteractionFunc: method is nil but scheduler.RecordInteraction was just called")
	}
	mock.lock.Lock()
	mock.calls.RecordInteraction = append(mock.calls.RecordInteraction, input)
	mock.lock.Unlock()
	return mock.RecordInteractionFunc(ctx, input)
}

func (mock *schedulerMock) GetDailyQueue(ctx context.Context, learnerID string) (domain.ReviewQueue, error) {
	if mock.GetDailyQueueFunc == nil {
		panic("schedulerMock.GetDailyQueueFunc: method is nil but scheduler.GetDailyQueue was just called")
	}
	mock.lock.Lock()
	mock.calls.GetDailyQueue = append(mock.calls.GetDailyQueue, learnerID)
	mock.lock.Unlock()
	return mock.GetDailyQueueFunc(ctx, learnerID)
}

func (mock *schedulerMock) GetResearchSuggestions(ctx context.Context, learnerID string, count int) ([]domain.ResearchSuggestion, error) {
	if mock.GetResearchSuggestionsFunc == nil {
		panic("schedulerMock.GetResearchSuggestionsFunc: method is nil but scheduler.GetResearchSuggestions was just called")
	}
	mock.lock.Lock()
	mock.calls.GetResearchSuggestions = append(mock.calls.GetResearchSuggestions, count)
	mock.lock.Unlock()
	return mock.GetResearchSuggestionsFunc(ctx, learnerID, count)
}

func (mock *schedulerMock) GetStats(ctx context.Context, learnerID string) (domain.LearnerStats, error) {
	if mock.GetStatsFunc == nil {
		panic("schedulerMock.GetStatsFunc: method is nil but scheduler.GetStats was just called")
	}
	mock.lock.Lock()
	mock.calls.GetStats = append(mock.calls.GetStats, learnerID)
	mock.lock.Unlock()
	return mock.GetStatsFunc(ctx, learnerID)
}

// RecordInteractionCalls gets all the calls that were made to RecordInteraction.
func (mock *schedulerMock) RecordInteractionCalls() []readiness.RecordInteractionInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.RecordInteraction
}

// GetResearchSuggestionsCalls gets the counts passed to GetResearchSuggestions.
func (mock *schedulerMock) GetResearchSuggestionsCalls() []int {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.GetResearchSuggestions
}

// contextProviderMock is a mock implementation of contextProvider.
type contextProviderMock struct {
	ContextFunc func(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error)

	calls struct {
		Context []struct {
			LearnerID string
			Query     string
			MaxTokens int
		}
	}
	lock sync.RWMutex
}

func (mock *contextProviderMock) Context(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error) {
	if mock.ContextFunc == nil {
		panic("contextProviderMock.ContextFunc: method is nil but contextProvider.Context was just called")
	}
	mock.lock.Lock()
	mock.calls.Context = append(mock.calls.Context, struct {
		LearnerID string
		Query     string
		MaxTokens int
	}{learnerID, query, maxTokens})
	mock.lock.Unlock()
	return mock.ContextFunc(ctx, learnerID, query, maxTokens)
}

// ContextCalls gets all the calls that were made to Context.
func (mock *contextProviderMock) ContextCalls() []struct {
	LearnerID string
	Query     string
	MaxTokens int
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Context
}

// classifierMock is a mock implementation of classifier.
type classifierMock struct {
	CompleteStructuredFunc func(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error

	calls struct {
		CompleteStructured []string
	}
	lock sync.RWMutex
}

func (mock *classifierMock) CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error {
	if mock.CompleteStructuredFunc == nil {
		panic("classifierMock.CompleteStructuredFunc: method is nil but classifier.CompleteStructured was just called")
	}
	mock.lock.Lock()
	mock.calls.CompleteStructured = append(mock.calls.CompleteStructured, prompt)
	mock.lock.Unlock()
	return mock.CompleteStructuredFunc(ctx, prompt, schema, opts, out)
}

// CompleteStructuredCalls gets the prompts passed to CompleteStructured.
func (mock *classifierMock) CompleteStructuredCalls() []string {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.CompleteStructured
}
