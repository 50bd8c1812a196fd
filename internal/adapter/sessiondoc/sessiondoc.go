// Package sessiondoc owns the stored JSON shape of validation session parts.
// Domain types carry no json tags, so every SQL adapter encodes sessions
// through this package and stays readable by the others.
package sessiondoc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

type analysisJSON struct {
	Complexity          string   `json:"complexity"`
	KeyConcepts         []string `json:"key_concepts"`
	PotentialWeaknesses []string `json:"potential_weaknesses"`
	DecisionPoints      []string `json:"decision_points"`
	Dependencies        []string `json:"dependencies"`
}

type questionJSON struct {
	Index         int    `json:"index"`
	Text          string `json:"text"`
	FocusArea     string `json:"focus_area"`
	ExpectedDepth string `json:"expected_depth"`
}

type evaluationJSON struct {
	Score    int      `json:"score"`
	Passed   bool     `json:"passed"`
	RedFlags []string `json:"red_flags"`
	Feedback string   `json:"feedback"`
}

type answerJSON struct {
	QuestionIndex int            `json:"question_index"`
	Question      string         `json:"question"`
	Text          string         `json:"text"`
	Evaluation    evaluationJSON `json:"evaluation"`
	JudgeFailed   bool           `json:"judge_failed"`
	AnsweredAt    time.Time      `json:"answered_at"`
}

type resultJSON struct {
	Verdict      string   `json:"verdict"`
	AverageScore float64  `json:"average_score"`
	PassRate     float64  `json:"pass_rate"`
	Summary      string   `json:"summary"`
	RedFlags     []string `json:"red_flags"`
	Feedback     []string `json:"feedback"`
	NextSteps    []string `json:"next_steps"`
}

// Doc holds the encoded columns of a session. Result is nil until the
// session is finalized.
type Doc struct {
	Analysis  []byte
	Questions []byte
	Answers   []byte
	Result    []byte
}

// Encode marshals the structured parts of s.
func Encode(s *domain.ValidationSession) (Doc, error) {
	var (
		doc Doc
		err error
	)

	if doc.Analysis, err = json.Marshal(analysisJSON(s.Analysis)); err != nil {
		return doc, fmt.Errorf("marshal analysis: %w", err)
	}

	questions := make([]questionJSON, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = questionJSON(q)
	}
	if doc.Questions, err = json.Marshal(questions); err != nil {
		return doc, fmt.Errorf("marshal questions: %w", err)
	}

	answers := make([]answerJSON, len(s.Answers))
	for i, a := range s.Answers {
		answers[i] = answerJSON{
			QuestionIndex: a.QuestionIndex,
			Question:      a.Question,
			Text:          a.Text,
			Evaluation:    evaluationJSON(a.Evaluation),
			JudgeFailed:   a.JudgeFailed,
			AnsweredAt:    a.AnsweredAt,
		}
	}
	if doc.Answers, err = json.Marshal(answers); err != nil {
		return doc, fmt.Errorf("marshal answers: %w", err)
	}

	if r := s.Result; r != nil {
		doc.Result, err = json.Marshal(resultJSON{
			Verdict:      string(r.Verdict),
			AverageScore: r.AverageScore,
			PassRate:     r.PassRate,
			Summary:      r.Summary,
			RedFlags:     r.RedFlags,
			Feedback:     r.Feedback,
			NextSteps:    r.NextSteps,
		})
		if err != nil {
			return doc, fmt.Errorf("marshal result: %w", err)
		}
	}
	return doc, nil
}

// Decode fills the structured parts of s from doc. An empty Result leaves
// s.Result nil.
func Decode(s *domain.ValidationSession, doc Doc) error {
	var a analysisJSON
	if err := json.Unmarshal(doc.Analysis, &a); err != nil {
		return fmt.Errorf("unmarshal analysis: %w", err)
	}
	s.Analysis = domain.SubmissionAnalysis(a)

	var qs []questionJSON
	if err := json.Unmarshal(doc.Questions, &qs); err != nil {
		return fmt.Errorf("unmarshal questions: %w", err)
	}
	s.Questions = make([]domain.ValidationQuestion, len(qs))
	for i, q := range qs {
		s.Questions[i] = domain.ValidationQuestion(q)
	}

	var as []answerJSON
	if err := json.Unmarshal(doc.Answers, &as); err != nil {
		return fmt.Errorf("unmarshal answers: %w", err)
	}
	s.Answers = make([]domain.Answer, len(as))
	for i, a := range as {
		s.Answers[i] = domain.Answer{
			QuestionIndex: a.QuestionIndex,
			Question:      a.Question,
			Text:          a.Text,
			Evaluation:    domain.Evaluation(a.Evaluation),
			JudgeFailed:   a.JudgeFailed,
			AnsweredAt:    a.AnsweredAt,
		}
	}

	if len(doc.Result) == 0 {
		s.Result = nil
		return nil
	}
	var r resultJSON
	if err := json.Unmarshal(doc.Result, &r); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	s.Result = &domain.ValidationResult{
		Verdict:      domain.Verdict(r.Verdict),
		AverageScore: r.AverageScore,
		PassRate:     r.PassRate,
		Summary:      r.Summary,
		RedFlags:     r.RedFlags,
		Feedback:     r.Feedback,
		NextSteps:    r.NextSteps,
	}
	return nil
}
