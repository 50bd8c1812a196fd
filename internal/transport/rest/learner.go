package rest

import (
	"context"
	"log/slog"
	"net/http"
)

type profileResetter interface {
	Reset(ctx context.Context, learnerID string) error
}

type collectionClearer interface {
	Clear(ctx context.Context, learnerID string) (int, error)
}

// LearnerHandler performs learner-wide operations.
type LearnerHandler struct {
	profiles  profileResetter
	documents collectionClearer
	sessions  collectionClearer
	log       *slog.Logger
}

// NewLearnerHandler creates a LearnerHandler.
func NewLearnerHandler(profiles profileResetter, documents, sessions collectionClearer, logger *slog.Logger) *LearnerHandler {
	return &LearnerHandler{
		profiles:  profiles,
		documents: documents,
		sessions:  sessions,
		log:       logger.With("handler", "learner"),
	}
}

type resetResponse struct {
	ChunksRemoved   int `json:"chunksRemoved"`
	SessionsRemoved int `json:"sessionsRemoved"`
}

// Reset handles DELETE /api/v1/learner. It wipes the readiness profile, the
// retrieval collection and the viva history. Steps are not transactional
// across stores; a failed step is reported and the call can be repeated.
func (h *LearnerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Reset(r.Context(), learner); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	chunks, err := h.documents.Clear(r.Context(), learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	sessions, err := h.sessions.Clear(r.Context(), learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "learner reset",
		slog.String("learner_id", learner),
		slog.Int("chunks", chunks),
		slog.Int("sessions", sessions),
	)
	writeJSON(w, http.StatusOK, resetResponse{ChunksRemoved: chunks, SessionsRemoved: sessions})
}
