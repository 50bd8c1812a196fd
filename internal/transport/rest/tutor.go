package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

type routerService interface {
	Route(ctx context.Context, req domain.TutorRequest) (*domain.RouteResult, error)
	History(limit int) []domain.ExecutionRecord
	Metrics() domain.RouterMetrics
}

// TutorHandler exposes the request router.
type TutorHandler struct {
	router routerService
	log    *slog.Logger
}

// NewTutorHandler creates a TutorHandler.
func NewTutorHandler(router routerService, logger *slog.Logger) *TutorHandler {
	return &TutorHandler{router: router, log: logger.With("handler", "tutor")}
}

type interactionRequest struct {
	Kind     string         `json:"kind"`
	Action   string         `json:"action"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Interact handles POST /api/v1/interactions.
func (h *TutorHandler) Interact(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	var req interactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if strings.TrimSpace(req.Kind) == "" && strings.TrimSpace(req.Action) == "" && strings.TrimSpace(req.Content) == "" {
		handleError(h.log, w, r, domain.NewValidationError("kind", "kind, action or content is required"))
		return
	}

	res, err := h.router.Route(r.Context(), domain.TutorRequest{
		Kind:      req.Kind,
		Action:    req.Action,
		LearnerID: learner,
		Content:   req.Content,
		Metadata:  req.Metadata,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInteractionResponse(res))
}

// Metrics handles GET /api/v1/router/metrics?history=N.
func (h *TutorHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "history", 20)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	limit = min(max(limit, 0), 100)

	writeJSON(w, http.StatusOK, toMetricsResponse(h.router.Metrics(), h.router.History(limit), learner))
}
