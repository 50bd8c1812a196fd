package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
)

// RecordTool handles the review_record MCP tool.
type RecordTool struct {
	svc     readinessService
	learner string
}

func (t *RecordTool) Definition() mcp.Tool {
	return mcp.NewTool("review_record",
		mcp.WithDescription("Record the outcome of one practice interaction with a concept and reschedule its review."),
		mcp.WithString("concept_id",
			mcp.Required(),
			mcp.Description("Stable concept identifier, e.g. 'binary-search'"),
		),
		mcp.WithBoolean("success",
			mcp.Required(),
			mcp.Description("Whether the learner got it right"),
		),
		mcp.WithString("kind",
			mcp.Description("practice (default), question, evaluation, review or viva"),
		),
		mcp.WithString("difficulty",
			mcp.Description("easy, medium (default) or hard"),
		),
		mcp.WithNumber("time_spent_seconds",
			mcp.Description("Time spent on the interaction"),
		),
	)
}

func (t *RecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conceptID := req.GetString("concept_id", "")
	if conceptID == "" {
		return mcp.NewToolResultError("'concept_id' is required"), nil
	}
	if _, ok := req.GetArguments()["success"].(bool); !ok {
		return mcp.NewToolResultError("'success' is required"), nil
	}

	rec, err := t.svc.RecordInteraction(ctx, readiness.RecordInteractionInput{
		LearnerID:  t.learner,
		ConceptID:  conceptID,
		Kind:       domain.InteractionKind(req.GetString("kind", "")),
		Success:    boolArg(req, "success", false),
		Difficulty: domain.Difficulty(req.GetString("difficulty", "")),
		TimeSpent:  time.Duration(intArg(req, "time_spent_seconds", 0)) * time.Second,
	})
	if err != nil {
		return errorResult("record interaction", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recorded %s: mastery %d%%, %d repetitions.", rec.ConceptID, rec.MasteryLevel, rec.RepetitionCount)
	if rec.NextReview != nil {
		fmt.Fprintf(&b, "\nNext review: %s", rec.NextReview.Format(time.DateOnly))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// QueueTool handles the review_queue MCP tool.
type QueueTool struct {
	svc     readinessService
	learner string
}

func (t *QueueTool) Definition() mcp.Tool {
	return mcp.NewTool("review_queue",
		mcp.WithDescription("Show today's review queue, ordered by priority and cut to the learner's daily time budget."),
	)
}

func (t *QueueTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := t.svc.GetDailyQueue(ctx, t.learner)
	if err != nil {
		return errorResult("review queue", err), nil
	}
	if len(q.Items) == 0 {
		return mcp.NewToolResultText(q.Recommendation.Message), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d concepts due, %d selected (%d min):\n\n", q.TotalDue, len(q.Items), q.EstimatedTotalMinutes)
	for i, it := range q.Items {
		fmt.Fprintf(&b, "[%d] %s  priority %d | mastery %d%% | %d min", i+1, it.ConceptID, it.Priority, it.MasteryLevel, it.EstimatedMinutes)
		if it.DaysOverdue > 0 {
			fmt.Fprintf(&b, " | %d days overdue", it.DaysOverdue)
		}
		b.WriteByte('\n')
	}
	if q.Recommendation.Message != "" {
		fmt.Fprintf(&b, "\n%s", q.Recommendation.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// StatsTool handles the review_stats MCP tool.
type StatsTool struct {
	svc     readinessService
	learner string
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("review_stats",
		mcp.WithDescription("Summarize the learner's mastery, weak areas and streak."),
	)
}

func (t *StatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.svc.GetStats(ctx, t.learner)
	if err != nil {
		return errorResult("learner stats", err), nil
	}

	text := fmt.Sprintf(
		"Concepts: %d (average mastery %d%%)\nExcellent: %d | Need work: %d | Weak areas: %d\nStreak: %d days (longest %d)",
		st.TotalConcepts, st.AverageMastery,
		st.ConceptsExcellent, st.ConceptsNeedWork, st.WeakAreas,
		st.CurrentStreak, st.LongestStreak,
	)
	return mcp.NewToolResultText(text), nil
}
