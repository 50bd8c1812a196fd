package viva

import (
	"fmt"
	"math"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Thresholds are the two independent acceptance rules for a session.
type Thresholds struct {
	PassRate     float64
	AverageScore float64
}

// DefaultThresholds returns a 70% pass rate and an average score of 60.
func DefaultThresholds() Thresholds {
	return Thresholds{PassRate: 0.7, AverageScore: 60}
}

// Summarize computes the verdict for a set of evaluated answers. A session is
// approved only when both the pass rate and the average score reach their
// thresholds; no answers means flagged.
func Summarize(answers []domain.Answer, th Thresholds) domain.ValidationResult {
	var (
		sum      int
		passed   int
		redFlags = []string{}
		feedback = make([]string, 0, len(answers))
	)

	for _, a := range answers {
		sum += a.Evaluation.Score
		if a.Evaluation.Passed {
			passed++
		}
		for _, f := range a.Evaluation.RedFlags {
			if f != "" {
				redFlags = append(redFlags, f)
			}
		}
		if a.Evaluation.Feedback != "" {
			feedback = append(feedback, fmt.Sprintf("Q%d: %s", a.QuestionIndex+1, a.Evaluation.Feedback))
		}
	}

	var avg, rate float64
	if n := len(answers); n > 0 {
		avg = float64(sum) / float64(n)
		rate = float64(passed) / float64(n)
	}

	res := domain.ValidationResult{
		AverageScore: math.Round(avg*100) / 100,
		PassRate:     math.Round(rate*10000) / 10000,
		RedFlags:     redFlags,
		Feedback:     feedback,
	}

	if len(answers) > 0 && rate >= th.PassRate && avg >= th.AverageScore {
		res.Verdict = domain.VerdictApproved
		res.Summary = "Submission approved. Your answers demonstrate genuine understanding."
		res.NextSteps = []string{"Your submission has been accepted."}
		return res
	}

	res.Verdict = domain.VerdictFlagged
	res.Summary = "Submission flagged. Your answers suggest insufficient understanding of the submitted work."
	res.NextSteps = []string{"Review the feedback for each question.", "Resubmit after addressing the gaps in understanding."}
	if rate < th.PassRate {
		res.NextSteps = append(res.NextSteps, fmt.Sprintf("Pass at least %.0f%% of the questions.", th.PassRate*100))
	}
	if avg < th.AverageScore {
		res.NextSteps = append(res.NextSteps, fmt.Sprintf("Raise the average score to %.0f or higher.", th.AverageScore))
	}
	return res
}

// judgeFailure is recorded in place of an evaluation the judge could not produce.
func judgeFailure() domain.Evaluation {
	return domain.Evaluation{
		Score:    0,
		Passed:   false,
		RedFlags: []string{"Evaluation error"},
		Feedback: "Unable to evaluate answer. Please try again.",
	}
}

func clampScore(s int) int {
	return max(0, min(100, s))
}
