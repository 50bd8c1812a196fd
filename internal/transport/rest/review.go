package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
)

type readinessService interface {
	RecordInteraction(ctx context.Context, input readiness.RecordInteractionInput) (*domain.ConceptRecord, error)
	GetDailyQueue(ctx context.Context, learnerID string) (domain.ReviewQueue, error)
	GetResearchSuggestions(ctx context.Context, learnerID string, count int) ([]domain.ResearchSuggestion, error)
	GetStats(ctx context.Context, learnerID string) (domain.LearnerStats, error)
	SetDailyBudget(ctx context.Context, input readiness.SetBudgetInput) (*domain.LearnerProfile, error)
}

// ReviewHandler exposes the readiness scheduler.
type ReviewHandler struct {
	svc readinessService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc readinessService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "review")}
}

type recordInteractionRequest struct {
	Kind             string  `json:"kind"`
	Success          bool    `json:"success"`
	Difficulty       string  `json:"difficulty"`
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`
}

// RecordInteraction handles POST /api/v1/concepts/{conceptId}/interactions.
func (h *ReviewHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	var req recordInteractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	record, err := h.svc.RecordInteraction(r.Context(), readiness.RecordInteractionInput{
		LearnerID:  learner,
		ConceptID:  r.PathValue("conceptId"),
		Kind:       domain.InteractionKind(req.Kind),
		Success:    req.Success,
		Difficulty: domain.Difficulty(req.Difficulty),
		TimeSpent:  time.Duration(req.TimeSpentSeconds * float64(time.Second)),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toConceptResponse(record))
}

// Queue handles GET /api/v1/review/queue.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	queue, err := h.svc.GetDailyQueue(r.Context(), learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(queue))
}

// Research handles GET /api/v1/review/research?count=N.
func (h *ReviewHandler) Research(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	count, err := queryInt(r, "count", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	suggestions, err := h.svc.GetResearchSuggestions(r.Context(), learner, count)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": toSuggestionsResponse(suggestions)})
}

// Stats handles GET /api/v1/review/stats.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.GetStats(r.Context(), learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse(stats))
}

type budgetRequest struct {
	Minutes int `json:"minutes"`
}

// SetBudget handles PUT /api/v1/review/budget.
func (h *ReviewHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	profile, err := h.svc.SetDailyBudget(r.Context(), readiness.SetBudgetInput{LearnerID: learner, Minutes: req.Minutes})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"dailyBudgetMinutes": profile.DailyBudgetMinutes})
}
