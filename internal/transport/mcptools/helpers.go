package mcptools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func floatArg(req mcp.CallToolRequest, key string) (float64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	return v, ok
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func sessionArg(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw := strings.TrimSpace(req.GetString("session_id", ""))
	if raw == "" {
		return uuid.Nil, mcp.NewToolResultError("'session_id' is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(fmt.Sprintf("'session_id' is not a valid id: %q", raw))
	}
	return id, nil
}

// errorResult turns a service error into a tool error the model can act on.
// Errors are reported in the result rather than as protocol failures.
func errorResult(action string, err error) *mcp.CallToolResult {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		parts := make([]string, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			parts = append(parts, fmt.Sprintf("%s %s", fe.Field, fe.Message))
		}
		return mcp.NewToolResultError(fmt.Sprintf("invalid input: %s", strings.Join(parts, "; ")))
	case errors.Is(err, domain.ErrUnknownSession), errors.Is(err, domain.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%s: not found", action))
	case errors.Is(err, domain.ErrOutOfOrderAnswer),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrSessionIncomplete):
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
	case errors.Is(err, domain.ErrGeneration):
		return mcp.NewToolResultError(fmt.Sprintf("%s: generation service unavailable, try again later", action))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err))
	}
}
