// Package router classifies learner interactions and dispatches them to the
// tutoring handlers.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/coach"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type tutor interface {
	Socratic(ctx context.Context, in coach.SocraticInput) (*coach.SocraticReply, error)
	Evaluate(ctx context.Context, in coach.EvaluateInput) (*coach.RubricEvaluation, error)
	Translate(ctx context.Context, in coach.TranslateInput) (*coach.Translation, error)
}

type validator interface {
	Start(ctx context.Context, input viva.StartInput) (*domain.ValidationSession, error)
	SubmitAnswer(ctx context.Context, input viva.SubmitAnswerInput) (*viva.AnswerOutcome, error)
}

type scheduler interface {
	RecordInteraction(ctx context.Context, input readiness.RecordInteractionInput) (*domain.ConceptRecord, error)
	GetDailyQueue(ctx context.Context, learnerID string) (domain.ReviewQueue, error)
	GetResearchSuggestions(ctx context.Context, learnerID string, count int) ([]domain.ResearchSuggestion, error)
	GetStats(ctx context.Context, learnerID string) (domain.LearnerStats, error)
}

type contextProvider interface {
	Context(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error)
}

type classifier interface {
	CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Options configures routing.
type Options struct {
	HistorySize     int
	DefaultLanguage string
	Aliases         map[string]string
	ContextTokens   int
	PassingScore    int
}

// DefaultOptions returns the production routing defaults.
func DefaultOptions() Options {
	return Options{
		HistorySize:     100,
		DefaultLanguage: "en",
		ContextTokens:   1500,
		PassingScore:    70,
	}
}

// Service routes requests. It never fails on classification: unknown
// requests fall back to Socratic guidance.
type Service struct {
	tutor      tutor
	validator  validator
	scheduler  scheduler
	retrieval  contextProvider
	classifier classifier
	table      table
	history    *history
	opts       Options
	tracer     trace.Tracer
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a new router Service.
func NewService(
	log *slog.Logger,
	tutor tutor,
	validator validator,
	scheduler scheduler,
	retrieval contextProvider,
	classifier classifier,
	opts Options,
) *Service {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if opts.ContextTokens <= 0 {
		opts.ContextTokens = 1500
	}
	if opts.PassingScore <= 0 {
		opts.PassingScore = 70
	}
	return &Service{
		tutor:      tutor,
		validator:  validator,
		scheduler:  scheduler,
		retrieval:  retrieval,
		classifier: classifier,
		table:      newTable(opts.Aliases),
		history:    newHistory(opts.HistorySize),
		opts:       opts,
		tracer:     otel.Tracer("github.com/heartmarshall/tutor-backend/internal/service/router"),
		log:        log.With("service", "router"),
		now:        time.Now,
	}
}

// Route classifies the request, attaches retrieved context, dispatches to
// the selected handler and optionally translates the reply.
func (s *Service) Route(ctx context.Context, req domain.TutorRequest) (*domain.RouteResult, error) {
	if req.LearnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	start := s.now()
	ctx, span := s.tracer.Start(ctx, "router.Route", trace.WithAttributes(
		attribute.String("learner.id", req.LearnerID),
		attribute.String("request.kind", req.Kind),
		attribute.String("request.action", req.Action),
	))
	defer span.End()

	steps := []string{"router"}

	decision := s.table.lookup(req.Kind, req.Action)
	if !decision.Handler.IsValid() {
		steps = append(steps, "classifier")
		decision = s.classify(ctx, req)
	}
	span.SetAttributes(
		attribute.String("route.handler", decision.Handler.String()),
		attribute.Bool("route.fallback", decision.Fallback),
		attribute.Bool("route.ai", decision.AIRouted),
	)

	if req.Content != "" && req.Context.Context == "" {
		steps = append(steps, "retrieval")
		req.Context = s.retrieve(ctx, span, req)
	}

	steps = append(steps, decision.Handler.String())
	out, err := s.dispatch(ctx, decision.Handler, req, &steps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		s.history.add(s.record(req, decision, steps, start, err))
		s.log.WarnContext(ctx, "route failed",
			slog.String("learner_id", req.LearnerID),
			slog.String("handler", decision.Handler.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	result := &domain.RouteResult{Decision: decision, Output: out}

	if lang := req.MetaString("preferredLanguage"); decision.PostProcess && lang != "" && lang != s.opts.DefaultLanguage {
		tr, err := s.postProcess(ctx, span, out, lang, req.MetaString("level"))
		switch {
		case err != nil:
			steps = append(steps, "translation(failed)")
		case tr != nil:
			steps = append(steps, "translation")
			result.Translated = true
			result.Translation = tr
		}
	}

	result.Trace = steps
	result.Duration = s.now().Sub(start)
	s.history.add(s.record(req, decision, steps, start, nil))

	s.log.InfoContext(ctx, "request routed",
		slog.String("learner_id", req.LearnerID),
		slog.String("handler", decision.Handler.String()),
		slog.Bool("fallback", decision.Fallback),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// History returns up to limit recent executions, most recent first.
func (s *Service) History(limit int) []domain.ExecutionRecord {
	return s.history.recent(limit)
}

// Metrics returns cumulative routing counters.
func (s *Service) Metrics() domain.RouterMetrics {
	return s.history.metrics()
}

func (s *Service) retrieve(ctx context.Context, span trace.Span, req domain.TutorRequest) domain.RetrievedContext {
	rc, err := s.retrieval.Context(ctx, req.LearnerID, req.Content, s.opts.ContextTokens)
	if err != nil {
		span.AddEvent("retrieval.failed", trace.WithAttributes(attribute.String("error", err.Error())))
		s.log.WarnContext(ctx, "context retrieval failed, continuing without context",
			slog.String("learner_id", req.LearnerID),
			slog.String("error", err.Error()),
		)
		return domain.RetrievedContext{Sources: []domain.ContextSource{}}
	}
	return rc
}

// texter is implemented by outputs that carry learner-visible text.
type texter interface {
	Text() string
}

// postProcess translates out into lang. It returns nil, nil when out carries
// no text to translate; a failed or degraded translation is an error.
func (s *Service) postProcess(ctx context.Context, span trace.Span, out any, lang, level string) (*coach.Translation, error) {
	t, ok := out.(texter)
	if !ok || t.Text() == "" {
		return nil, nil
	}

	tr, err := s.tutor.Translate(ctx, coach.TranslateInput{
		Concept:        t.Text(),
		TargetLanguage: lang,
		Level:          level,
		IncludeAnalogy: true,
	})
	if err == nil && tr.Degraded {
		err = fmt.Errorf("%w: degraded translation", domain.ErrGeneration)
	}
	if err != nil {
		span.AddEvent("translation.failed", trace.WithAttributes(attribute.String("error", err.Error())))
		s.log.WarnContext(ctx, "post-process translation failed, returning original",
			slog.String("language", lang),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return tr, nil
}

func (s *Service) record(req domain.TutorRequest, d domain.RoutingDecision, steps []string, start time.Time, err error) domain.ExecutionRecord {
	rec := domain.ExecutionRecord{
		RequestID: uuid.NewString(),
		LearnerID: req.LearnerID,
		Handler:   d.Handler,
		Trace:     steps,
		Fallback:  d.Fallback,
		StartedAt: start,
		Duration:  s.now().Sub(start),
	}
	if err != nil {
		rec.Err = err.Error()
	}
	return rec
}
