package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const judgeSchema = `{
  "score": 0,
  "passed": false,
  "redFlags": ["string"],
  "feedback": "string"
}`

// structuredCompleter is the part of Client the judge needs.
type structuredCompleter interface {
	CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error
}

// Judge scores a single viva answer with the generation service.
type Judge struct {
	gen structuredCompleter
}

// NewJudge creates a Judge on top of any structured generation service.
func NewJudge(gen structuredCompleter) *Judge {
	return &Judge{gen: gen}
}

type judgePayload struct {
	Score    int      `json:"score"`
	Passed   bool     `json:"passed"`
	RedFlags []string `json:"redFlags"`
	Feedback string   `json:"feedback"`
}

// Evaluate grades answer against q. The score is clamped to 0-100 and an
// answer scoring below 50 is never reported as passed.
func (j *Judge) Evaluate(ctx context.Context, q domain.ValidationQuestion, answer, submission string) (domain.Evaluation, error) {
	var p judgePayload
	opts := domain.GenerateOptions{
		System:      "You are a strict examiner verifying that a student understands their own work.",
		Temperature: 0.2,
		MaxTokens:   800,
	}
	if err := j.gen.CompleteStructured(ctx, buildJudgePrompt(q, answer, submission), judgeSchema, opts, &p); err != nil {
		return domain.Evaluation{}, fmt.Errorf("judge evaluate: %w", err)
	}

	score := min(max(p.Score, 0), 100)
	redFlags := p.RedFlags
	if redFlags == nil {
		redFlags = []string{}
	}
	return domain.Evaluation{
		Score:    score,
		Passed:   p.Passed && score >= 50,
		RedFlags: redFlags,
		Feedback: strings.TrimSpace(p.Feedback),
	}, nil
}

func buildJudgePrompt(q domain.ValidationQuestion, answer, submission string) string {
	depth := q.ExpectedDepth
	if depth == "" {
		depth = "detailed"
	}
	return fmt.Sprintf(`Evaluate the student's answer to a follow-up question about their own submission.

Submission (excerpt):
%s

Question: %s
Focus area: %s
Expected depth: %s

Student answer:
%s

Score the answer from 0 to 100 for demonstrated understanding. List red flags such as
vague generalities, contradictions with the submission, or signs the student did not write it.

Output ONLY a JSON object matching this schema:
%s`, submission, q.Text, q.FocusArea, depth, answer, judgeSchema)
}
