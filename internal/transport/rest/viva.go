package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

type vivaService interface {
	Start(ctx context.Context, input viva.StartInput) (*domain.ValidationSession, error)
	SubmitAnswer(ctx context.Context, input viva.SubmitAnswerInput) (*viva.AnswerOutcome, error)
	Finalize(ctx context.Context, sessionID uuid.UUID, learnerID string) (*domain.ValidationSession, error)
	Get(ctx context.Context, sessionID uuid.UUID, learnerID string) (*domain.ValidationSession, error)
	History(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error)
}

// VivaHandler exposes understanding-validation sessions.
type VivaHandler struct {
	svc vivaService
	log *slog.Logger
}

// NewVivaHandler creates a VivaHandler.
func NewVivaHandler(svc vivaService, logger *slog.Logger) *VivaHandler {
	return &VivaHandler{svc: svc, log: logger.With("handler", "viva")}
}

type startVivaRequest struct {
	Submission     string `json:"submission"`
	SubmissionType string `json:"submissionType"`
}

// Start handles POST /api/v1/viva.
func (h *VivaHandler) Start(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	var req startVivaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	session, err := h.svc.Start(r.Context(), viva.StartInput{
		LearnerID:      learner,
		Submission:     req.Submission,
		SubmissionType: req.SubmissionType,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// List handles GET /api/v1/viva?limit=N.
func (h *VivaHandler) List(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	sessions, err := h.svc.History(r.Context(), learner, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// Get handles GET /api/v1/viva/{id}.
func (h *VivaHandler) Get(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Get(r.Context(), id, learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

type answerRequest struct {
	QuestionIndex *int   `json:"questionIndex"`
	Answer        string `json:"answer"`
}

// Answer handles POST /api/v1/viva/{id}/answers.
func (h *VivaHandler) Answer(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if req.QuestionIndex == nil {
		handleError(h.log, w, r, domain.NewValidationError("questionIndex", "required"))
		return
	}

	outcome, err := h.svc.SubmitAnswer(r.Context(), viva.SubmitAnswerInput{
		LearnerID:     learner,
		SessionID:     id,
		QuestionIndex: *req.QuestionIndex,
		Answer:        req.Answer,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerOutcomeResponse(outcome))
}

// Finalize handles POST /api/v1/viva/{id}/finalize.
func (h *VivaHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Finalize(r.Context(), id, learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *VivaHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
