// Package coach implements the learner-facing handlers the router dispatches
// to: Socratic guidance, rubric evaluation and concept translation.
package coach

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

type generator interface {
	CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error
}

// Service holds the coach handlers. Guidance and translation degrade to
// templated replies when generation fails; evaluation never does.
type Service struct {
	gen generator
	log *slog.Logger
}

// NewService creates a new coach Service.
func NewService(log *slog.Logger, gen generator) *Service {
	return &Service{
		gen: gen,
		log: log.With("service", "coach"),
	}
}
