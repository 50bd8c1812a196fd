package retrieval

import (
	"context"
	"sync"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Ensure, that chunkRepoMock does implement chunkRepo.
var _ chunkRepo = &chunkRepoMock{}

// chunkRepoMock is a mock implementation of chunkRepo.
type chunkRepoMock struct {
	InsertChunksFunc func(ctx context.Context, chunks []domain.Chunk) error
	ListChunksFunc   func(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error)
	DeleteChunksFunc func(ctx context.Context, learnerID string) (int, error)

	calls struct {
		InsertChunks []struct {
			Ctx    context.Context
			Chunks []domain.Chunk
		}
		ListChunks []struct {
			Ctx       context.Context
			LearnerID string
			Filter    domain.ChunkFilter
		}
		DeleteChunks []struct {
			Ctx       context.Context
			LearnerID string
		}
	}
	lockInsertChunks sync.RWMutex
	lockListChunks   sync.RWMutex
	lockDeleteChunks sync.RWMutex
}

// InsertChunks calls InsertChunksFunc.
func (mock *chunkRepoMock) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if mock.InsertChunksFunc == nil {
		panic("chunkRepoMock.InsertChunksFunc: method is nil but chunkRepo.InsertChunks was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Chunks []domain.Chunk
	}{Ctx: ctx, Chunks: chunks}
	mock.lockInsertChunks.Lock()
	mock.calls.InsertChunks = append(mock.calls.InsertChunks, callInfo)
	mock.lockInsertChunks.Unlock()
	return mock.InsertChunksFunc(ctx, chunks)
}

// InsertChunksCalls gets all the calls that were made to InsertChunks.
func (mock *chunkRepoMock) InsertChunksCalls() []struct {
	Ctx    context.Context
	Chunks []domain.Chunk
} {
	mock.lockInsertChunks.RLock()
	defer mock.lockInsertChunks.RUnlock()
	return mock.calls.InsertChunks
}

// ListChunks calls ListChunksFunc.
func (mock *chunkRepoMock) ListChunks(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	if mock.ListChunksFunc == nil {
		panic("chunkRepoMock.ListChunksFunc: method is nil but chunkRepo.ListChunks was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID string
		Filter    domain.ChunkFilter
	}{Ctx: ctx, LearnerID: learnerID, Filter: filter}
	mock.lockListChunks.Lock()
	mock.calls.ListChunks = append(mock.calls.ListChunks, callInfo)
	mock.lockListChunks.Unlock()
	return mock.ListChunksFunc(ctx, learnerID, filter)
}

// ListChunksCalls gets all the calls that were made to ListChunks.
func (mock *chunkRepoMock) ListChunksCalls() []struct {
	Ctx       context.Context
	LearnerID string
	Filter    domain.ChunkFilter
} {
	mock.lockListChunks.RLock()
	defer mock.lockListChunks.RUnlock()
	return mock.calls.ListChunks
}

// DeleteChunks calls DeleteChunksFunc.
func (mock *chunkRepoMock) DeleteChunks(ctx context.Context, learnerID string) (int, error) {
	if mock.DeleteChunksFunc == nil {
		panic("chunkRepoMock.DeleteChunksFunc: method is nil but chunkRepo.DeleteChunks was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID string
	}{Ctx: ctx, LearnerID: learnerID}
	mock.lockDeleteChunks.Lock()
	mock.calls.DeleteChunks = append(mock.calls.DeleteChunks, callInfo)
	mock.lockDeleteChunks.Unlock()
	return mock.DeleteChunksFunc(ctx, learnerID)
}

// DeleteChunksCalls gets all the calls that were made to DeleteChunks.
func (mock *chunkRepoMock) DeleteChunksCalls() []struct {
	Ctx       context.Context
	LearnerID string
} {
	mock.lockDeleteChunks.RLock()
	defer mock.lockDeleteChunks.RUnlock()
	return mock.calls.DeleteChunks
}
