package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/pkg/ctxutil"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// learnerID returns the authenticated learner or writes a 401.
func learnerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := ctxutil.LearnerIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfOrderAnswer),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrSessionIncomplete),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err as JSON. Server-side failures are logged; their
// details are not exposed.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, status, errorResponse{Error: "validation failed", Fields: verr.Fields()})
		return
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		writeError(w, status, http.StatusText(status))
		return
	}

	writeError(w, status, rootMessage(err))
}

// rootMessage returns the first domain sentinel matched by err.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrUnknownSession, domain.ErrOutOfOrderAnswer, domain.ErrAlreadyFinalized,
		domain.ErrSessionIncomplete, domain.ErrNotFound, domain.ErrAlreadyExists,
		domain.ErrConflict, domain.ErrUnauthorized, domain.ErrForbidden,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return fmt.Sprint(err)
}
