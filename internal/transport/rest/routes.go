package rest

import "net/http"

// Handlers groups every REST handler registered by Register.
type Handlers struct {
	Health    *HealthHandler
	Tutor     *TutorHandler
	Review    *ReviewHandler
	Documents *DocumentHandler
	Viva      *VivaHandler
	Learner   *LearnerHandler
}

// Register mounts the API on mux. protect wraps every learner-scoped route.
func Register(mux *http.ServeMux, h Handlers, protect func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protect(fn))
	}

	api("POST /api/v1/interactions", h.Tutor.Interact)
	api("GET /api/v1/router/metrics", h.Tutor.Metrics)

	api("POST /api/v1/concepts/{conceptId}/interactions", h.Review.RecordInteraction)
	api("GET /api/v1/review/queue", h.Review.Queue)
	api("GET /api/v1/review/research", h.Review.Research)
	api("GET /api/v1/review/stats", h.Review.Stats)
	api("PUT /api/v1/review/budget", h.Review.SetBudget)

	api("POST /api/v1/documents", h.Documents.Ingest)
	api("GET /api/v1/documents/search", h.Documents.Search)
	api("GET /api/v1/documents/context", h.Documents.Context)
	api("GET /api/v1/documents/stats", h.Documents.Stats)

	api("POST /api/v1/viva", h.Viva.Start)
	api("GET /api/v1/viva", h.Viva.List)
	api("GET /api/v1/viva/{id}", h.Viva.Get)
	api("POST /api/v1/viva/{id}/answers", h.Viva.Answer)
	api("POST /api/v1/viva/{id}/finalize", h.Viva.Finalize)

	api("DELETE /api/v1/learner", h.Learner.Reset)
}
