package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/tutor-backend/pkg/ctxutil"
)

type accessTokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

// Auth attaches the learner named by a valid bearer token to the request.
// Requests without a bearer token continue unauthenticated so that probes
// stay reachable; RequireLearner guards the learner routes. A token that is
// present but invalid is rejected here.
func Auth(validator accessTokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			learnerID, err := validator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithLearnerID(r.Context(), learnerID)))
		})
	}
}

// RequireLearner answers 401 unless Auth resolved a learner.
func RequireLearner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.LearnerIDFromCtx(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "authentication required")
	})
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
