package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/coach"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

// Schedule sub-actions, selected by metadata "action".
const (
	scheduleQueue    = "queue"
	scheduleResearch = "research"
	scheduleStats    = "stats"
)

func (s *Service) dispatch(ctx context.Context, h domain.HandlerKind, req domain.TutorRequest, steps *[]string) (any, error) {
	switch h {
	case domain.HandlerSocratic:
		return s.handleSocratic(ctx, req, steps)
	case domain.HandlerViva:
		return s.handleViva(ctx, req)
	case domain.HandlerEvaluation:
		return s.handleEvaluation(ctx, req, steps)
	case domain.HandlerTranslation:
		return s.handleTranslation(ctx, req)
	case domain.HandlerSchedule:
		return s.handleSchedule(ctx, req)
	case domain.HandlerUnclassified:
		return nil, fmt.Errorf("%w: request was not classified", domain.ErrRouting)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrRouting, h)
	}
}

func (s *Service) handleSocratic(ctx context.Context, req domain.TutorRequest, steps *[]string) (any, error) {
	attempts, _, err := req.MetaInt("attempts")
	if err != nil {
		return nil, err
	}
	reply, err := s.tutor.Socratic(ctx, coach.SocraticInput{
		LearnerID:  req.LearnerID,
		Question:   req.Content,
		Topic:      req.MetaString("topic"),
		Difficulty: req.MetaString("difficulty"),
		Attempts:   attempts,
		Context:    req.Context,
	})
	if err != nil {
		return nil, err
	}

	if conceptID := req.MetaString("conceptId"); conceptID != "" {
		*steps = append(*steps, "scheduler")
		s.recordInteraction(ctx, readiness.RecordInteractionInput{
			LearnerID:  req.LearnerID,
			ConceptID:  conceptID,
			Kind:       domain.InteractionQuestion,
			Success:    !reply.Prohibited,
			Difficulty: domain.Difficulty(req.MetaString("difficulty")),
		})
	}
	return reply, nil
}

func (s *Service) handleViva(ctx context.Context, req domain.TutorRequest) (any, error) {
	if raw := req.MetaString("sessionId"); raw != "" {
		idx, ok, err := req.MetaInt("questionIndex")
		if err != nil {
			return nil, err
		}
		if ok {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, domain.NewValidationError("session_id", "must be a UUID")
			}
			return s.validator.SubmitAnswer(ctx, viva.SubmitAnswerInput{
				LearnerID:     req.LearnerID,
				SessionID:     id,
				QuestionIndex: idx,
				Answer:        req.Content,
			})
		}
	}

	return s.validator.Start(ctx, viva.StartInput{
		LearnerID:      req.LearnerID,
		Submission:     req.Content,
		SubmissionType: req.MetaString("submissionType"),
	})
}

func (s *Service) handleEvaluation(ctx context.Context, req domain.TutorRequest, steps *[]string) (any, error) {
	ev, err := s.tutor.Evaluate(ctx, coach.EvaluateInput{
		Content:        req.Content,
		SubmissionType: req.MetaString("submissionType"),
		Mode:           req.MetaString("evaluationMode"),
		Level:          req.MetaString("level"),
		Course:         req.MetaString("course"),
		Assignment:     req.MetaString("assignment"),
	})
	if err != nil {
		return nil, err
	}

	if conceptID := req.MetaString("conceptId"); conceptID != "" {
		*steps = append(*steps, "scheduler")
		s.recordInteraction(ctx, readiness.RecordInteractionInput{
			LearnerID: req.LearnerID,
			ConceptID: conceptID,
			Kind:      domain.InteractionEvaluation,
			Success:   ev.OverallScore >= s.opts.PassingScore,
		})
	}
	return ev, nil
}

func (s *Service) handleTranslation(ctx context.Context, req domain.TutorRequest) (any, error) {
	return s.tutor.Translate(ctx, coach.TranslateInput{
		Concept:        req.Content,
		TargetLanguage: req.MetaString("targetLanguage"),
		Level:          req.MetaString("level"),
		IncludeAnalogy: req.MetaBool("includeAnalogy", true),
	})
}

func (s *Service) handleSchedule(ctx context.Context, req domain.TutorRequest) (any, error) {
	switch action := req.MetaString("action"); action {
	case "", scheduleQueue:
		return s.scheduler.GetDailyQueue(ctx, req.LearnerID)
	case scheduleResearch:
		count, _, err := req.MetaInt("count")
		if err != nil {
			return nil, err
		}
		return s.scheduler.GetResearchSuggestions(ctx, req.LearnerID, count)
	case scheduleStats:
		return s.scheduler.GetStats(ctx, req.LearnerID)
	default:
		return nil, domain.NewValidationError("action", "must be queue, research, or stats")
	}
}

// recordInteraction is a side effect of handling; failures do not fail the
// request.
func (s *Service) recordInteraction(ctx context.Context, in readiness.RecordInteractionInput) {
	if _, err := s.scheduler.RecordInteraction(ctx, in); err != nil {
		s.log.WarnContext(ctx, "record interaction failed",
			slog.String("learner_id", in.LearnerID),
			slog.String("concept_id", in.ConceptID),
			slog.String("error", err.Error()),
		)
	}
}
