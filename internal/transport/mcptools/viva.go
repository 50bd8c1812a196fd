package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

// VivaStartTool handles the viva_start MCP tool.
type VivaStartTool struct {
	svc     vivaService
	learner string
}

func (t *VivaStartTool) Definition() mcp.Tool {
	return mcp.NewTool("viva_start",
		mcp.WithDescription(
			"Start a mini-viva on the learner's own submission. Returns the session id and the "+
				"questions; ask them one at a time.",
		),
		mcp.WithString("submission",
			mcp.Required(),
			mcp.Description("The code or text the learner wrote"),
		),
		mcp.WithString("submission_type",
			mcp.Description("code (default), essay or design"),
		),
	)
}

func (t *VivaStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	submission := req.GetString("submission", "")
	if strings.TrimSpace(submission) == "" {
		return mcp.NewToolResultError("'submission' is required"), nil
	}

	s, err := t.svc.Start(ctx, viva.StartInput{
		LearnerID:      t.learner,
		Submission:     submission,
		SubmissionType: req.GetString("submission_type", ""),
	})
	if err != nil {
		return errorResult("start viva", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s submission, %d questions)\n\n", s.ID, s.Analysis.Complexity, len(s.Questions))
	for _, q := range s.Questions {
		fmt.Fprintf(&b, "Q%d [%s]: %s\n", q.Index, q.FocusArea, q.Text)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// VivaAnswerTool handles the viva_answer MCP tool.
type VivaAnswerTool struct {
	svc     vivaService
	learner string
}

func (t *VivaAnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("viva_answer",
		mcp.WithDescription("Submit the learner's answer to the next unanswered viva question."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Id returned by viva_start"),
		),
		mcp.WithNumber("question_index",
			mcp.Required(),
			mcp.Description("Index of the question being answered; must be the next one"),
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The learner's answer in their own words"),
		),
	)
}

func (t *VivaAnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := sessionArg(req)
	if bad != nil {
		return bad, nil
	}
	if _, ok := req.GetArguments()["question_index"].(float64); !ok {
		return mcp.NewToolResultError("'question_index' is required"), nil
	}

	out, err := t.svc.SubmitAnswer(ctx, viva.SubmitAnswerInput{
		LearnerID:     t.learner,
		SessionID:     id,
		QuestionIndex: intArg(req, "question_index", -1),
		Answer:        req.GetString("answer", ""),
	})
	if err != nil {
		return errorResult("answer", err), nil
	}

	ev := out.Answer.Evaluation
	var b strings.Builder
	fmt.Fprintf(&b, "Score %d (%s), %d/%d answered.", ev.Score, passLabel(ev.Passed), out.Answered, out.Total)
	if ev.Feedback != "" {
		fmt.Fprintf(&b, "\nFeedback: %s", ev.Feedback)
	}
	switch {
	case out.NextQuestion != nil:
		fmt.Fprintf(&b, "\n\nNext Q%d [%s]: %s", out.NextQuestion.Index, out.NextQuestion.FocusArea, out.NextQuestion.Text)
	case out.Finalized():
		b.WriteString("\n\n")
		writeResult(&b, out.Session.Result)
	default:
		b.WriteString("\n\nAll questions answered; call viva_finalize.")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// VivaFinalizeTool handles the viva_finalize MCP tool.
type VivaFinalizeTool struct {
	svc     vivaService
	learner string
}

func (t *VivaFinalizeTool) Definition() mcp.Tool {
	return mcp.NewTool("viva_finalize",
		mcp.WithDescription("Close a fully answered viva and return the verdict."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Id returned by viva_start"),
		),
	)
}

func (t *VivaFinalizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := sessionArg(req)
	if bad != nil {
		return bad, nil
	}

	s, err := t.svc.Finalize(ctx, id, t.learner)
	if err != nil {
		return errorResult("finalize", err), nil
	}

	var b strings.Builder
	writeResult(&b, s.Result)
	return mcp.NewToolResultText(b.String()), nil
}

func writeResult(b *strings.Builder, r *domain.ValidationResult) {
	if r == nil {
		b.WriteString("No result.")
		return
	}
	fmt.Fprintf(b, "Verdict: %s (average %.1f, pass rate %.0f%%)\n%s", r.Verdict, r.AverageScore, r.PassRate*100, r.Summary)
	for _, f := range r.RedFlags {
		fmt.Fprintf(b, "\n! %s", f)
	}
	for _, s := range r.NextSteps {
		fmt.Fprintf(b, "\n- %s", s)
	}
}

func passLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "not passed"
}
