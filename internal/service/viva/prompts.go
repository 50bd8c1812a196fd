package viva

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const (
	questionContextChars = 2000
	judgeContextChars    = 1000
)

const analysisSchema = `{
  "complexity": "beginner | intermediate | advanced",
  "keyConcepts": ["string"],
  "potentialWeaknesses": ["string"],
  "decisionPoints": ["string"],
  "dependencies": ["string"]
}`

const questionsSchema = `{
  "questions": [
    {"question": "string", "focusArea": "string", "expectedDepth": "surface | detailed | expert"}
  ],
  "rationale": "string"
}`

// analysisPayload is the structured answer to buildAnalysisPrompt.
type analysisPayload struct {
	Complexity          string   `json:"complexity"`
	KeyConcepts         []string `json:"keyConcepts"`
	PotentialWeaknesses []string `json:"potentialWeaknesses"`
	DecisionPoints      []string `json:"decisionPoints"`
	Dependencies        []string `json:"dependencies"`
}

// questionsPayload is the structured answer to buildQuestionsPrompt.
type questionsPayload struct {
	Questions []struct {
		Question      string `json:"question"`
		FocusArea     string `json:"focusArea"`
		ExpectedDepth string `json:"expectedDepth"`
	} `json:"questions"`
	Rationale string `json:"rationale"`
}

func fallbackAnalysis() domain.SubmissionAnalysis {
	return domain.SubmissionAnalysis{
		Complexity:          "intermediate",
		KeyConcepts:         []string{"Unknown"},
		PotentialWeaknesses: []string{},
		DecisionPoints:      []string{"General approach"},
		Dependencies:        []string{},
	}
}

func fallbackQuestions() []domain.ValidationQuestion {
	return []domain.ValidationQuestion{
		{
			Index:         0,
			Text:          "Explain the main approach you took in this submission.",
			FocusArea:     "Overall understanding",
			ExpectedDepth: "detailed",
		},
		{
			Index:         1,
			Text:          "What was the most challenging part and how did you solve it?",
			FocusArea:     "Problem-solving",
			ExpectedDepth: "detailed",
		},
	}
}

func buildAnalysisPrompt(submission, submissionType string) string {
	var focus string
	switch submissionType {
	case "code":
		focus = `1. Complexity level (beginner/intermediate/advanced)
2. Key algorithmic concepts used
3. Critical decision points
4. Libraries and patterns the code depends on
5. Potential areas of confusion`
	case "essay":
		focus = `1. Overall complexity of the argument
2. Key claims and concepts
3. Critical decision points in the structure
4. Sources and evidence it depends on
5. Weak or unsupported claims`
	case "project":
		focus = `1. Architecture complexity
2. Key technical concepts
3. Key technical decisions
4. Integration points and dependencies
5. Components most likely to be misunderstood`
	default:
		focus = `1. Complexity level
2. Key technical concepts
3. Decision points
4. Dependencies
5. Potential weaknesses`
	}

	return fmt.Sprintf(`Analyze this %s submission:

%s

Determine:
%s

Output ONLY a JSON object matching this schema:
%s`, submissionType, submission, focus, analysisSchema)
}

func buildQuestionsPrompt(submission, submissionType string, a domain.SubmissionAnalysis, minQ, maxQ int) string {
	return fmt.Sprintf(`You are conducting a mini-viva (oral defense) for a learner's submission.

Submission type: %s
Complexity: %s
Key concepts: %s
Decision points: %s

Submission:
%s

Generate %d-%d targeted questions that:
- test understanding, not memorization
- ask WHY decisions were made
- cannot be answered by someone who only copied the work
- probe specific design choices

Output ONLY a JSON object matching this schema:
%s`,
		submissionType,
		a.Complexity,
		strings.Join(a.KeyConcepts, ", "),
		strings.Join(a.DecisionPoints, ", "),
		truncate(submission, questionContextChars),
		minQ, maxQ,
		questionsSchema,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
