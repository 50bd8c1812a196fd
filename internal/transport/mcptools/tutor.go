package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// InteractTool handles the tutor_interact MCP tool.
type InteractTool struct {
	router  routerService
	learner string
}

func (t *InteractTool) Definition() mcp.Tool {
	return mcp.NewTool("tutor_interact",
		mcp.WithDescription(
			"Send a learner request to the tutor. The router picks the handler: socratic guidance, "+
				"a mini-viva, rubric evaluation, translation or review scheduling. Relevant uploaded "+
				"material is attached automatically.",
		),
		mcp.WithString("content",
			mcp.Description("The learner's question, submission or text to work on"),
		),
		mcp.WithString("kind",
			mcp.Description("Request type such as question, code_submission, evaluate, translate or schedule. Leave empty to let the router classify"),
		),
		mcp.WithString("action",
			mcp.Description("Explicit action name; takes precedence over kind"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Handler options, e.g. {\"topic\": \"graphs\", \"language\": \"es\"}"),
		),
	)
}

func (t *InteractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	kind := req.GetString("kind", "")
	action := req.GetString("action", "")
	if strings.TrimSpace(content+kind+action) == "" {
		return mcp.NewToolResultError("one of 'content', 'kind' or 'action' is required"), nil
	}
	meta, _ := req.GetArguments()["metadata"].(map[string]any)

	res, err := t.router.Route(ctx, domain.TutorRequest{
		Kind:      kind,
		Action:    action,
		LearnerID: t.learner,
		Content:   content,
		Metadata:  meta,
	})
	if err != nil {
		return errorResult("tutor request", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Handler: %s", res.Decision.Handler)
	if res.Decision.Fallback {
		b.WriteString(" (fallback)")
	}
	if res.Decision.Reasoning != "" {
		fmt.Fprintf(&b, "\nReason: %s", res.Decision.Reasoning)
	}

	body, err := json.MarshalIndent(res.Output, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
	}
	fmt.Fprintf(&b, "\n\n%s", body)

	if res.Translated {
		tr, err := json.MarshalIndent(res.Translation, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\n\nTranslation:\n%s", tr)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
