package viva

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Ensure, that sessionRepoMock does implement sessionRepo.
var _ sessionRepo = &sessionRepoMock{}

// sessionRepoMock is a mock implementation of sessionRepo.
type sessionRepoMock struct {
	CreateFunc          func(ctx context.Context, s *domain.ValidationSession) error
	GetFunc             func(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error)
	UpdateFunc          func(ctx context.Context, s *domain.ValidationSession) error
	ListByLearnerFunc   func(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error)
	DeleteByLearnerFunc func(ctx context.Context, learnerID string) (int, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			S   *domain.ValidationSession
		}
		Get []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Update []struct {
			Ctx context.Context
			S   *domain.ValidationSession
		}
		ListByLearner []struct {
			Ctx       context.Context
			LearnerID string
			Limit     int
		}
		DeleteByLearner []struct {
			Ctx       context.Context
			LearnerID string
		}
	}
	lockDeleteByLearner sync.RWMutex
	lockCreate          sync.RWMutex
	lockGet             sync.RWMutex
	lockUpdate          sync.RWMutex
	lockListByLearner   sync.RWMutex
}

// Create calls CreateFunc.
func (mock *sessionRepoMock) Create(ctx context.Context, s *domain.ValidationSession) error {
	if mock.CreateFunc == nil {
		panic("sessionRepoMock.CreateFunc: method is nil but sessionRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct {
		Ctx context.Context
		S   *domain.ValidationSession
	}{Ctx: ctx, S: s})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, s)
}

// CreateCalls gets all the calls that were made to Create.
func (mock *sessionRepoMock) CreateCalls() []struct {
	Ctx context.Context
	S   *domain.ValidationSession
} {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

// Get calls GetFunc.
func (mock *sessionRepoMock) Get(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error) {
	if mock.GetFunc == nil {
		panic("sessionRepoMock.GetFunc: method is nil but sessionRepo.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, id)
}

// GetCalls gets all the calls that were made to Get.
func (mock *sessionRepoMock) GetCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

// Update calls UpdateFunc.
func (mock *sessionRepoMock) Update(ctx context.Context, s *domain.ValidationSession) error {
	if mock.UpdateFunc == nil {
		panic("sessionRepoMock.UpdateFunc: method is nil but sessionRepo.Update was just called")
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, struct {
		Ctx context.Context
		S   *domain.ValidationSession
	}{Ctx: ctx, S: s})
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, s)
}

// UpdateCalls gets all the calls that were made to Update.
func (mock *sessionRepoMock) UpdateCalls() []struct {
	Ctx context.Context
	S   *domain.ValidationSession
} {
	mock.lockUpdate.RLock()
	defer mock.lockUpdate.RUnlock()
	return mock.calls.Update
}

// ListByLearner calls ListByLearnerFunc.
func (mock *sessionRepoMock) ListByLearner(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error) {
	if mock.ListByLearnerFunc == nil {
		panic("sessionRepoMock.ListByLearnerFunc: method is nil but sessionRepo.ListByLearner was just called")
	}
	mock.lockListByLearner.Lock()
	mock.calls.ListByLearner = append(mock.calls.ListByLearner, struct {
		Ctx       context.Context
		LearnerID string
		Limit     int
	}{Ctx: ctx, LearnerID: learnerID, Limit: limit})
	mock.lockListByLearner.Unlock()
	return mock.ListByLearnerFunc(ctx, learnerID, limit)
}

// ListByLearnerCalls gets all the calls that were made to ListByLearner.
func (mock *sessionRepoMock) ListByLearnerCalls() []struct {
	Ctx       context.Context
	LearnerID string
	Limit     int
} {
	mock.lockListByLearner.RLock()
	defer mock.lockListByLearner.RUnlock()
	return mock.calls.ListByLearner
}

// DeleteByLearner calls DeleteByLearnerFunc.
func (mock *sessionRepoMock) DeleteByLearner(ctx context.Context, learnerID string) (int, error) {
	if mock.DeleteByLearnerFunc == nil {
		panic("sessionRepoMock.DeleteByLearnerFunc: method is nil but sessionRepo.DeleteByLearner was just called")
	}
	mock.lockDeleteByLearner.Lock()
	mock.calls.DeleteByLearner = append(mock.calls.DeleteByLearner, struct {
		Ctx       context.Context
		LearnerID string
	}{Ctx: ctx, LearnerID: learnerID})
	mock.lockDeleteByLearner.Unlock()
	return mock.DeleteByLearnerFunc(ctx, learnerID)
}

// DeleteByLearnerCalls gets all the calls that were made to DeleteByLearner.
func (mock *sessionRepoMock) DeleteByLearnerCalls() []struct {
	Ctx       context.Context
	LearnerID string
} {
	mock.lockDeleteByLearner.RLock()
	defer mock.lockDeleteByLearner.RUnlock()
	return mock.calls.DeleteByLearner
}

// Ensure, that generatorMock does implement generator.
var _ generator = &generatorMock{}

// generatorMock is a mock implementation of generator.
type generatorMock struct {
	CompleteStructuredFunc func(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error

	calls struct {
		CompleteStructured []struct {
			Ctx    context.Context
			Prompt string
			Schema string
			Opts   domain.GenerateOptions
			Out    any
		}
	}
	lockCompleteStructured sync.RWMutex
}

// CompleteStructured calls CompleteStructuredFunc.
func (mock *generatorMock) CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error {
	if mock.CompleteStructuredFunc == nil {
		panic("generatorMock.CompleteStructuredFunc: method is nil but generator.CompleteStructured was just called")
	}
	mock.lockCompleteStructured.Lock()
	mock.calls.CompleteStructured = append(mock.calls.CompleteStructured, struct {
		Ctx    context.Context
		Prompt string
		Schema string
		Opts   domain.GenerateOptions
		Out    any
	}{Ctx: ctx, Prompt: prompt, Schema: schema, Opts: opts, Out: out})
	mock.lockCompleteStructured.Unlock()
	return mock.CompleteStructuredFunc(ctx, prompt, schema, opts, out)
}

// CompleteStructuredCalls gets all the calls that were made to CompleteStructured.
func (mock *generatorMock) CompleteStructuredCalls() []struct {
	Ctx    context.Context
	Prompt string
	Schema string
	Opts   domain.GenerateOptions
	Out    any
} {
	mock.lockCompleteStructured.RLock()
	defer mock.lockCompleteStructured.RUnlock()
	return mock.calls.CompleteStructured
}

// Ensure, that judgeMock does implement judge.
var _ judge = &judgeMock{}

// judgeMock is a mock implementation of judge.
type judgeMock struct {
	EvaluateFunc func(ctx context.Context, q domain.ValidationQuestion, answer, submission string) (domain.Evaluation, error)

	calls struct {
		Evaluate []struct {
			Ctx        context.Context
			Q          domain.ValidationQuestion
			Answer     string
			Submission string
		}
	}
	lockEvaluate sync.RWMutex
}

// Evaluate calls EvaluateFunc.
func (mock *judgeMock) Evaluate(ctx context.Context, q domain.ValidationQuestion, answer, submission string) (domain.Evaluation, error) {
	if mock.EvaluateFunc == nil {
		panic("judgeMock.EvaluateFunc: method is nil but judge.Evaluate was just called")
	}
	mock.lockEvaluate.Lock()
	mock.calls.Evaluate = append(mock.calls.Evaluate, struct {
		Ctx        context.Context
		Q          domain.ValidationQuestion
		Answer     string
		Submission string
	}{Ctx: ctx, Q: q, Answer: answer, Submission: submission})
	mock.lockEvaluate.Unlock()
	return mock.EvaluateFunc(ctx, q, answer, submission)
}

// EvaluateCalls gets all the calls that were made to Evaluate.
func (mock *judgeMock) EvaluateCalls() []struct {
	Ctx        context.Context
	Q          domain.ValidationQuestion
	Answer     string
	Submission string
} {
	mock.lockEvaluate.RLock()
	defer mock.lockEvaluate.RUnlock()
	return mock.calls.Evaluate
}
