package readiness

import (
	"context"
	"sync"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

var _ profileRepo = &profileRepoMock{}

type profileRepoMock struct {
	GetFunc         func(ctx context.Context, learnerID string) (*domain.LearnerProfile, error)
	SaveFunc        func(ctx context.Context, p *domain.LearnerProfile) error
	SaveConceptFunc func(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error
	DeleteFunc      func(ctx context.Context, learnerID string) error

	calls struct {
		Get []struct {
			Ctx       context.Context
			LearnerID string
		}
		Save []struct {
			Ctx context.Context
			P   *domain.LearnerProfile
		}
		SaveConcept []struct {
			Ctx       context.Context
			LearnerID string
			Rec       *domain.ConceptRecord
		}
		Delete []struct {
			Ctx       context.Context
			LearnerID string
		}
	}
	lockGet         sync.RWMutex
	lockSave        sync.RWMutex
	lockSaveConcept sync.RWMutex
	lockDelete      sync.RWMutex
}

func (mock *profileRepoMock) Get(ctx context.Context, learnerID string) (*domain.LearnerProfile, error) {
	if mock.GetFunc == nil {
		panic("profileRepoMock.GetFunc: method is nil but profileRepo.Get was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID string
	}{Ctx: ctx, LearnerID: learnerID}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, learnerID)
}

func (mock *profileRepoMock) GetCalls() []struct {
	Ctx       context.Context
	LearnerID string
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *profileRepoMock) Save(ctx context.Context, p *domain.LearnerProfile) error {
	if mock.SaveFunc == nil {
		panic("profileRepoMock.SaveFunc: method is nil but profileRepo.Save was just called")
	}
	callInfo := struct {
		Ctx context.Context
		P   *domain.LearnerProfile
	}{Ctx: ctx, P: p}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, callInfo)
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, p)
}

func (mock *profileRepoMock) SaveCalls() []struct {
	Ctx context.Context
	P   *domain.LearnerProfile
} {
	mock.lockSave.RLock()
	calls := mock.calls.Save
	mock.lockSave.RUnlock()
	return calls
}

func (mock *profileRepoMock) SaveConcept(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error {
	if mock.SaveConceptFunc == nil {
		panic("profileRepoMock.SaveConceptFunc: method is nil but profileRepo.SaveConcept was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID string
		Rec       *domain.ConceptRecord
	}{Ctx: ctx, LearnerID: learnerID, Rec: rec}
	mock.lockSaveConcept.Lock()
	mock.calls.SaveConcept = append(mock.calls.SaveConcept, callInfo)
	mock.lockSaveConcept.Unlock()
	return mock.SaveConceptFunc(ctx, learnerID, rec)
}

func (mock *profileRepoMock) SaveConceptCalls() []struct {
	Ctx       context.Context
	LearnerID string
	Rec       *domain.ConceptRecord
} {
	mock.lockSaveConcept.RLock()
	calls := mock.calls.SaveConcept
	mock.lockSaveConcept.RUnlock()
	return calls
}

func (mock *profileRepoMock) Delete(ctx context.Context, learnerID string) error {
	if mock.DeleteFunc == nil {
		panic("profileRepoMock.DeleteFunc: method is nil but profileRepo.Delete was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID string
	}{Ctx: ctx, LearnerID: learnerID}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, learnerID)
}

func (mock *profileRepoMock) DeleteCalls() []struct {
	Ctx       context.Context
	LearnerID string
} {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct {
			Ctx context.Context
		}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{ Ctx context.Context }{Ctx: ctx})
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct {
	Ctx context.Context
} {
	mock.lockRunInTx.RLock()
	calls := mock.calls.RunInTx
	mock.lockRunInTx.RUnlock()
	return calls
}

// passthroughTx runs fn directly.
func passthroughTx() *txManagerMock {
	return &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}
