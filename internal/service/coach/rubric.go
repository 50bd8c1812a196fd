package coach

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Evaluation modes.
const (
	ModeAcademic = "academic"
	ModeIndustry = "industry"
)

const evaluationContextChars = 3000

// Criterion is one weighted rubric line.
type Criterion struct {
	Name        string
	Weight      int
	Description string
}

var rubrics = map[string][]Criterion{
	ModeAcademic: {
		{Name: "correctness", Weight: 40, Description: "Functional accuracy and error-free execution"},
		{Name: "theory", Weight: 25, Description: "Understanding of underlying concepts"},
		{Name: "documentation", Weight: 15, Description: "Comments and explanation quality"},
		{Name: "style", Weight: 10, Description: "Conventions and readability"},
		{Name: "testing", Weight: 10, Description: "Test coverage and edge cases"},
	},
	ModeIndustry: {
		{Name: "performance", Weight: 30, Description: "Execution efficiency and optimization"},
		{Name: "scalability", Weight: 25, Description: "Ability to handle growth and load"},
		{Name: "maintainability", Weight: 20, Description: "Code quality and future extensibility"},
		{Name: "security", Weight: 15, Description: "Vulnerability prevention"},
		{Name: "production_ready", Weight: 10, Description: "Deployment readiness and robustness"},
	},
}

// Rubric returns the criteria for mode, or nil for an unknown mode.
func Rubric(mode string) []Criterion {
	return rubrics[mode]
}

// EvaluateInput is a submission to grade against a rubric.
type EvaluateInput struct {
	Content        string
	SubmissionType string
	Mode           string
	Level          string
	Course         string
	Assignment     string
}

// Validate checks all fields and collects all errors.
func (i *EvaluateInput) Validate() error {
	var errs []domain.FieldError

	if i.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if i.Mode != "" && Rubric(i.Mode) == nil {
		errs = append(errs, domain.FieldError{Field: "evaluation_mode", Message: "must be academic or industry"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CriterionScore is the judged score of one criterion.
type CriterionScore struct {
	Name          string
	Weight        int
	Score         int
	Justification string
	Examples      []string
}

// RubricEvaluation is a graded submission.
type RubricEvaluation struct {
	Mode             string
	OverallScore     int
	Grade            string
	Criteria         []CriterionScore
	Strengths        []string
	Weaknesses       []string
	Feedback         string
	Commentary       string
	ImprovementAreas []string
}

type criterionPayload struct {
	Score         int      `json:"score"`
	Justification string   `json:"justification"`
	Examples      []string `json:"examples"`
}

type evaluationPayload struct {
	Criteria   map[string]criterionPayload `json:"criteria"`
	Strengths  []string                    `json:"strengths"`
	Weaknesses []string                    `json:"weaknesses"`
	Feedback   string                      `json:"feedback"`
	Commentary string                      `json:"commentary"`
}

// Evaluate grades a submission. Scoring must be trustworthy, so generation
// failures and incomplete responses are returned to the caller.
func (s *Service) Evaluate(ctx context.Context, in EvaluateInput) (*RubricEvaluation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Mode == "" {
		in.Mode = ModeAcademic
	}
	in.SubmissionType = orDefault(in.SubmissionType, "code")
	in.Level = orDefault(in.Level, "undergraduate")

	rubric := Rubric(in.Mode)

	var p evaluationPayload
	err := s.gen.CompleteStructured(ctx, buildEvaluationPrompt(in, rubric), evaluationSchema(rubric), domain.GenerateOptions{
		System:      evaluatorPersona(in.Mode),
		Temperature: 0.4,
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("evaluate submission: %w", err)
	}

	scores := make([]CriterionScore, 0, len(rubric))
	for _, c := range rubric {
		got, ok := p.Criteria[c.Name]
		if !ok {
			return nil, &domain.GenerationError{
				Op:  "evaluate",
				Err: fmt.Errorf("%w: criterion %q missing", domain.ErrSchemaMismatch, c.Name),
			}
		}
		scores = append(scores, CriterionScore{
			Name:          c.Name,
			Weight:        c.Weight,
			Score:         max(0, min(100, got.Score)),
			Justification: got.Justification,
			Examples:      nonNil(got.Examples),
		})
	}

	overall := OverallScore(scores)
	ev := &RubricEvaluation{
		Mode:             in.Mode,
		OverallScore:     overall,
		Grade:            Grade(overall, in.Mode),
		Criteria:         scores,
		Strengths:        nonNil(p.Strengths),
		Weaknesses:       nonNil(p.Weaknesses),
		Feedback:         p.Feedback,
		Commentary:       p.Commentary,
		ImprovementAreas: improvementAreas(scores, 3),
	}

	s.log.InfoContext(ctx, "submission evaluated",
		slog.String("mode", in.Mode),
		slog.Int("overall_score", overall),
		slog.String("grade", ev.Grade),
	)
	return ev, nil
}

// OverallScore is the weight-averaged criterion score, rounded.
func OverallScore(scores []CriterionScore) int {
	var total, weights float64
	for _, c := range scores {
		total += float64(c.Score * c.Weight)
		weights += float64(c.Weight)
	}
	if weights == 0 {
		return 0
	}
	return int(math.Round(total / weights))
}

// Grade maps a score to a letter grade (academic) or a readiness band (industry).
func Grade(score int, mode string) string {
	if mode == ModeIndustry {
		switch {
		case score >= 85:
			return "Excellence - Production Ready"
		case score >= 70:
			return "Good - Minor Revisions"
		case score >= 55:
			return "Acceptable - Major Revisions"
		case score >= 40:
			return "Needs Work - Significant Issues"
		default:
			return "Unacceptable - Complete Rework"
		}
	}

	switch {
	case score >= 93:
		return "A"
	case score >= 90:
		return "A-"
	case score >= 87:
		return "B+"
	case score >= 83:
		return "B"
	case score >= 80:
		return "B-"
	case score >= 77:
		return "C+"
	case score >= 73:
		return "C"
	case score >= 70:
		return "C-"
	case score >= 67:
		return "D+"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func improvementAreas(scores []CriterionScore, n int) []string {
	sorted := make([]CriterionScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	out := make([]string, 0, n)
	for _, c := range sorted[:min(n, len(sorted))] {
		line := fmt.Sprintf("%s: %d/100", c.Name, c.Score)
		if c.Justification != "" {
			line += " - " + c.Justification
		}
		out = append(out, line)
	}
	return out
}

func evaluatorPersona(mode string) string {
	if mode == ModeIndustry {
		return "You are a principal engineer reviewing code for production readiness."
	}
	return "You are a computer science professor with twenty years of grading experience."
}

func evaluationSchema(rubric []Criterion) string {
	lines := make([]string, len(rubric))
	for i, c := range rubric {
		lines[i] = fmt.Sprintf(`    %q: {"score": 0, "justification": "string", "examples": ["string"]}`, c.Name)
	}
	return "{\n  \"criteria\": {\n" + strings.Join(lines, ",\n") + "\n  },\n" +
		`  "strengths": ["string"],
  "weaknesses": ["string"],
  "feedback": "string",
  "commentary": "string"
}`
}

func buildEvaluationPrompt(in EvaluateInput, rubric []Criterion) string {
	var criteria strings.Builder
	for _, c := range rubric {
		fmt.Fprintf(&criteria, "- %s (%d%%): %s\n", c.Name, c.Weight, c.Description)
	}

	course := ""
	if in.Course != "" || in.Assignment != "" {
		course = fmt.Sprintf("Course: %s\nAssignment: %s\n\n", in.Course, in.Assignment)
	}

	return fmt.Sprintf(`Evaluate this %s submission by a %s learner in %s mode.

%sSubmission:
%s

Score each criterion from 0 to 100 with a justification and concrete examples:
%s
Also list the top 3 strengths and the top 3 weaknesses.

Output ONLY a JSON object matching this schema:
%s`, in.SubmissionType, in.Level, in.Mode, course, truncate(in.Content, evaluationContextChars), criteria.String(), evaluationSchema(rubric))
}
