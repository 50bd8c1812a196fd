package viva

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/pkg/keylock"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type sessionRepo interface {
	Create(ctx context.Context, s *domain.ValidationSession) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error)
	Update(ctx context.Context, s *domain.ValidationSession) error
	ListByLearner(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error)
	DeleteByLearner(ctx context.Context, learnerID string) (int, error)
}

type generator interface {
	CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error
}

type judge interface {
	Evaluate(ctx context.Context, q domain.ValidationQuestion, answer, submission string) (domain.Evaluation, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Options are the viva tunables.
type Options struct {
	MinQuestions int
	MaxQuestions int
	Thresholds   Thresholds
	JudgeTimeout time.Duration
}

// DefaultOptions returns 4-6 questions, the default thresholds and a 30s judge timeout.
func DefaultOptions() Options {
	return Options{
		MinQuestions: 4,
		MaxQuestions: 6,
		Thresholds:   DefaultThresholds(),
		JudgeTimeout: 30 * time.Second,
	}
}

// Service runs mini-viva sessions. Every mutation of a session happens under
// that session's lock and only after the judge call returned.
type Service struct {
	sessions sessionRepo
	gen      generator
	judge    judge
	locks    keylock.Map
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new viva Service.
func NewService(log *slog.Logger, sessions sessionRepo, gen generator, j judge, opts Options) *Service {
	return &Service{
		sessions: sessions,
		gen:      gen,
		judge:    j,
		opts:     opts,
		log:      log.With("service", "viva"),
		now:      time.Now,
	}
}

// Start analyzes a submission, drafts the questions and opens a Pending session.
// Generation failures degrade to the fallback analysis and questions.
func (s *Service) Start(ctx context.Context, input StartInput) (*domain.ValidationSession, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.SubmissionType == "" {
		input.SubmissionType = "code"
	}

	analysis := s.analyze(ctx, input.Submission, input.SubmissionType)
	questions := s.draftQuestions(ctx, input.Submission, input.SubmissionType, analysis)

	now := s.now()
	session := &domain.ValidationSession{
		ID:             uuid.New(),
		LearnerID:      input.LearnerID,
		Submission:     input.Submission,
		SubmissionType: input.SubmissionType,
		Analysis:       analysis,
		Questions:      questions,
		Answers:        []domain.Answer{},
		Status:         domain.SessionStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "viva started",
		slog.String("session_id", session.ID.String()),
		slog.String("learner_id", input.LearnerID),
		slog.String("submission_type", input.SubmissionType),
		slog.Int("questions", len(questions)),
	)

	return session, nil
}

// SubmitAnswer evaluates the answer to the next expected question and appends
// it to the session. Answering the last question finalizes the session.
func (s *Service) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*AnswerOutcome, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(input.SessionID.String())
	defer unlock()

	session, err := s.load(ctx, input.SessionID, input.LearnerID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrAlreadyFinalized
	}
	if want := session.NextQuestionIndex(); input.QuestionIndex != want {
		return nil, fmt.Errorf("%w: got question %d, expected %d", domain.ErrOutOfOrderAnswer, input.QuestionIndex, want)
	}

	question := session.Questions[input.QuestionIndex]
	eval, judgeFailed := s.evaluate(ctx, session, question, input.Answer)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	answer := domain.Answer{
		QuestionIndex: input.QuestionIndex,
		Question:      question.Text,
		Text:          input.Answer,
		Evaluation:    eval,
		JudgeFailed:   judgeFailed,
		AnsweredAt:    now,
	}
	session.Answers = append(session.Answers, answer)
	session.Status = domain.SessionStatusAnswering
	session.UpdatedAt = now

	if session.IsComplete() {
		s.finalize(session, now)
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.log.InfoContext(ctx, "viva answer recorded",
		slog.String("session_id", session.ID.String()),
		slog.Int("question_index", input.QuestionIndex),
		slog.Int("score", eval.Score),
		slog.Bool("passed", eval.Passed),
		slog.Bool("judge_failed", judgeFailed),
	)
	if session.IsFinalized() {
		s.logFinalized(ctx, session)
	}

	out := &AnswerOutcome{
		Session:  session,
		Answer:   answer,
		Answered: len(session.Answers),
		Total:    len(session.Questions),
	}
	if !session.IsComplete() {
		next := session.Questions[session.NextQuestionIndex()]
		out.NextQuestion = &next
	}
	return out, nil
}

// Finalize closes a fully answered session that is not finalized yet.
func (s *Service) Finalize(ctx context.Context, sessionID uuid.UUID, learnerID string) (*domain.ValidationSession, error) {
	unlock := s.locks.Lock(sessionID.String())
	defer unlock()

	session, err := s.load(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrAlreadyFinalized
	}
	if !session.IsComplete() {
		return nil, fmt.Errorf("%w: %d of %d answered", domain.ErrSessionIncomplete, len(session.Answers), len(session.Questions))
	}

	s.finalize(session, s.now())

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logFinalized(ctx, session)
	return session, nil
}

// Get returns the learner's session.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID, learnerID string) (*domain.ValidationSession, error) {
	return s.load(ctx, sessionID, learnerID)
}

// History returns the learner's sessions, most recent first.
func (s *Service) History(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	sessions, err := s.sessions.ListByLearner(ctx, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// load returns the session if it exists and belongs to learnerID. Sessions of
// other learners are reported as unknown.
func (s *Service) load(ctx context.Context, id uuid.UUID, learnerID string) (*domain.ValidationSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSession, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.LearnerID != learnerID {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSession, id)
	}
	return session, nil
}

func (s *Service) finalize(session *domain.ValidationSession, now time.Time) {
	result := Summarize(session.Answers, s.opts.Thresholds)
	session.Result = &result
	session.Status = domain.SessionStatusFinalized
	session.FinalizedAt = &now
	session.UpdatedAt = now
}

func (s *Service) logFinalized(ctx context.Context, session *domain.ValidationSession) {
	s.log.InfoContext(ctx, "viva finalized",
		slog.String("session_id", session.ID.String()),
		slog.String("learner_id", session.LearnerID),
		slog.String("verdict", session.Result.Verdict.String()),
		slog.Float64("average_score", session.Result.AverageScore),
		slog.Float64("pass_rate", session.Result.PassRate),
	)
}

// evaluate calls the judge. A failed or timed-out call yields a zero-score,
// failing evaluation so that a broken judge never approves a submission.
func (s *Service) evaluate(ctx context.Context, session *domain.ValidationSession, q domain.ValidationQuestion, answer string) (domain.Evaluation, bool) {
	jctx := ctx
	if s.opts.JudgeTimeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, s.opts.JudgeTimeout)
		defer cancel()
	}

	eval, err := s.judge.Evaluate(jctx, q, answer, truncate(session.Submission, judgeContextChars))
	if err != nil {
		s.log.WarnContext(ctx, "judge failed, recording failing answer",
			slog.String("session_id", session.ID.String()),
			slog.Int("question_index", q.Index),
			slog.String("error", err.Error()),
		)
		return judgeFailure(), true
	}

	eval.Score = clampScore(eval.Score)
	if eval.RedFlags == nil {
		eval.RedFlags = []string{}
	}
	return eval, false
}

func (s *Service) analyze(ctx context.Context, submission, submissionType string) domain.SubmissionAnalysis {
	var p analysisPayload
	err := s.gen.CompleteStructured(ctx, buildAnalysisPrompt(submission, submissionType), analysisSchema, domain.GenerateOptions{
		System:      "You are an expert technical evaluator specializing in academic integrity.",
		Temperature: 0.3,
	}, &p)
	if err == nil && strings.TrimSpace(p.Complexity) == "" {
		err = fmt.Errorf("%w: empty complexity", domain.ErrSchemaMismatch)
	}
	if err != nil {
		s.log.WarnContext(ctx, "submission analysis failed, using fallback", slog.String("error", err.Error()))
		return fallbackAnalysis()
	}

	return domain.SubmissionAnalysis{
		Complexity:          p.Complexity,
		KeyConcepts:         nonNil(p.KeyConcepts),
		PotentialWeaknesses: nonNil(p.PotentialWeaknesses),
		DecisionPoints:      nonNil(p.DecisionPoints),
		Dependencies:        nonNil(p.Dependencies),
	}
}

// draftQuestions asks for MinQuestions..MaxQuestions questions. Extra questions
// are dropped; too few valid questions fall back to the default pair.
func (s *Service) draftQuestions(ctx context.Context, submission, submissionType string, a domain.SubmissionAnalysis) []domain.ValidationQuestion {
	var p questionsPayload
	prompt := buildQuestionsPrompt(submission, submissionType, a, s.opts.MinQuestions, s.opts.MaxQuestions)
	err := s.gen.CompleteStructured(ctx, prompt, questionsSchema, domain.GenerateOptions{
		System:      "You are an academic integrity specialist. Ask questions only the real author can answer.",
		Temperature: 0.7,
	}, &p)

	var questions []domain.ValidationQuestion
	if err == nil {
		for _, q := range p.Questions {
			text := strings.TrimSpace(q.Question)
			if text == "" {
				continue
			}
			questions = append(questions, domain.ValidationQuestion{
				Index:         len(questions),
				Text:          text,
				FocusArea:     q.FocusArea,
				ExpectedDepth: q.ExpectedDepth,
			})
			if len(questions) == s.opts.MaxQuestions {
				break
			}
		}
		if len(questions) < s.opts.MinQuestions {
			err = fmt.Errorf("%w: %d usable questions, need %d", domain.ErrSchemaMismatch, len(questions), s.opts.MinQuestions)
		}
	}
	if err != nil {
		s.log.WarnContext(ctx, "question generation failed, using fallback", slog.String("error", err.Error()))
		return fallbackQuestions()
	}
	return questions
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Clear deletes every session of the learner and reports how many were removed.
func (s *Service) Clear(ctx context.Context, learnerID string) (int, error) {
	if learnerID == "" {
		return 0, domain.NewValidationError("learner_id", "required")
	}

	n, err := s.sessions.DeleteByLearner(ctx, learnerID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	s.log.InfoContext(ctx, "viva history cleared",
		slog.String("learner_id", learnerID),
		slog.Int("sessions", n),
	)
	return n, nil
}
