package stub

import (
	"context"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Judge grades answers by length: the offline server needs a judge that can
// both pass and fail learners without a model.
type Judge struct{}

// Evaluate scores answer by word count.
func (Judge) Evaluate(ctx context.Context, q domain.ValidationQuestion, answer, _ string) (domain.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Evaluation{}, &domain.GenerationError{Op: "judge", Err: err}
	}

	words := len(strings.Fields(answer))
	switch {
	case words >= 20:
		return domain.Evaluation{Score: 80, Passed: true, RedFlags: []string{}, Feedback: "Detailed answer about " + focus(q) + "."}, nil
	case words >= 8:
		return domain.Evaluation{Score: 60, Passed: true, RedFlags: []string{}, Feedback: "Adequate, but expand on " + focus(q) + "."}, nil
	default:
		return domain.Evaluation{
			Score:    20,
			Passed:   false,
			RedFlags: []string{"answer too brief"},
			Feedback: "The answer does not demonstrate understanding of " + focus(q) + ".",
		}, nil
	}
}

func focus(q domain.ValidationQuestion) string {
	if q.FocusArea == "" {
		return "the submission"
	}
	return q.FocusArea
}
