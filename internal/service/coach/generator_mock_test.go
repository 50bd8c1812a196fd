package coach

import (
	"context"
	"sync"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

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
	callInfo := struct {
		Ctx    context.Context
		Prompt string
		Schema string
		Opts   domain.GenerateOptions
		Out    any
	}{Ctx: ctx, Prompt: prompt, Schema: schema, Opts: opts, Out: out}
	mock.lockCompleteStructured.Lock()
	mock.calls.CompleteStructured = append(mock.calls.CompleteStructured, callInfo)
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
