package coach

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Reply kinds.
const (
	ReplyGuidance         = "socratic_guidance"
	ReplyIntegrityWarning = "academic_integrity_warning"
)

var answerDumping = []*regexp.Regexp{
	regexp.MustCompile(`(?i)give me the (answer|solution|code)`),
	regexp.MustCompile(`(?i)what is the (answer|solution)`),
	regexp.MustCompile(`(?i)solve this for me`),
	regexp.MustCompile(`(?i)write the code`),
}

// SocraticInput is a learner question with optional retrieved material.
type SocraticInput struct {
	LearnerID  string
	Question   string
	Topic      string
	Difficulty string
	Attempts   int
	Context    domain.RetrievedContext
}

// SocraticReply guides the learner without giving the answer away.
type SocraticReply struct {
	Kind             string
	Content          string
	Hints            []string
	LeadingQuestions []string
	ConceptualGaps   []string
	NextStep         string
	Suggestions      []string
	Prohibited       bool
	Degraded         bool
}

// Text is the learner-visible body of the reply.
func (r *SocraticReply) Text() string { return r.Content }

type diagnosisPayload struct {
	ConfusionPoint     string   `json:"confusionPoint"`
	MissingFoundation  string   `json:"missingFoundation"`
	ComprehensionLevel int      `json:"comprehensionLevel"`
	Gaps               []string `json:"gaps"`
}

type guidancePayload struct {
	Guidance         string   `json:"guidance"`
	Hints            []string `json:"hints"`
	LeadingQuestions []string `json:"leadingQuestions"`
	NextStep         string   `json:"nextStep"`
}

const diagnosisSchema = `{"confusionPoint": "string", "missingFoundation": "string", "comprehensionLevel": 0, "gaps": ["string"]}`

const guidanceSchema = `{"guidance": "string", "hints": ["string"], "leadingQuestions": ["string"], "nextStep": "string"}`

// IsAnswerDumping reports whether the question asks for a ready-made answer.
func IsAnswerDumping(question string) bool {
	for _, re := range answerDumping {
		if re.MatchString(question) {
			return true
		}
	}
	return false
}

// Socratic answers a question with hints and leading questions. Requests for
// ready-made answers get an integrity warning instead. Generation failures
// produce a templated reply marked Degraded.
func (s *Service) Socratic(ctx context.Context, in SocraticInput) (*SocraticReply, error) {
	if in.Question == "" {
		return nil, domain.NewValidationError("content", "required")
	}

	if IsAnswerDumping(in.Question) {
		s.log.InfoContext(ctx, "answer dumping refused", slog.String("learner_id", in.LearnerID))
		return integrityWarning(), nil
	}

	diag := s.diagnose(ctx, in)

	var g guidancePayload
	err := s.gen.CompleteStructured(ctx, buildGuidancePrompt(in, diag), guidanceSchema, domain.GenerateOptions{
		System:      "You are a Socratic tutor. You teach by asking, never by telling answers.",
		Temperature: 0.8,
	}, &g)
	if err == nil && g.Guidance == "" {
		err = fmt.Errorf("%w: empty guidance", domain.ErrSchemaMismatch)
	}
	if err != nil {
		s.log.WarnContext(ctx, "guidance generation failed, using template",
			slog.String("learner_id", in.LearnerID),
			slog.String("error", err.Error()),
		)
		reply := templatedGuidance(in.Question)
		reply.ConceptualGaps = nonNil(diag.Gaps)
		return reply, nil
	}

	return &SocraticReply{
		Kind:             ReplyGuidance,
		Content:          g.Guidance,
		Hints:            nonNil(g.Hints),
		LeadingQuestions: nonNil(g.LeadingQuestions),
		ConceptualGaps:   nonNil(diag.Gaps),
		NextStep:         g.NextStep,
		Suggestions:      []string{},
	}, nil
}

func (s *Service) diagnose(ctx context.Context, in SocraticInput) diagnosisPayload {
	var d diagnosisPayload
	err := s.gen.CompleteStructured(ctx, buildDiagnosisPrompt(in), diagnosisSchema, domain.GenerateOptions{
		System:      "You are an expert learning diagnostician. Never provide solutions, only diagnose learning gaps.",
		Temperature: 0.3,
	}, &d)
	if err != nil {
		s.log.WarnContext(ctx, "diagnosis failed, using fallback", slog.String("error", err.Error()))
		return diagnosisPayload{
			ConfusionPoint:     "Unable to determine",
			MissingFoundation:  "Needs clarification",
			ComprehensionLevel: 50,
			Gaps:               []string{"Requires more context"},
		}
	}
	d.ComprehensionLevel = max(0, min(100, d.ComprehensionLevel))
	return d
}

func integrityWarning() *SocraticReply {
	return &SocraticReply{
		Kind:    ReplyIntegrityWarning,
		Content: "I'm here to help you learn, not to provide ready-made answers. Let's work through this together.",
		Hints:   []string{},
		LeadingQuestions: []string{
			"What have you tried so far?",
			"Where exactly are you stuck?",
			"Which concept is unclear?",
		},
		ConceptualGaps: []string{},
		Suggestions: []string{
			"Describe your current approach",
			"Identify the specific step that's confusing",
			"Share your thought process so far",
		},
		Prohibited: true,
	}
}

func templatedGuidance(question string) *SocraticReply {
	return &SocraticReply{
		Kind:    ReplyGuidance,
		Content: fmt.Sprintf("Let's break down %q together. Start by restating the problem in your own words.", truncate(question, 200)),
		Hints: []string{
			"Identify the inputs and the expected output.",
			"Try a smaller version of the problem first.",
		},
		LeadingQuestions: []string{
			"What is the core challenge you're facing?",
			"What happens if you simplify the problem?",
		},
		NextStep:    "Explain the problem in your own words",
		Suggestions: []string{},
		Degraded:    true,
	}
}

func buildDiagnosisPrompt(in SocraticInput) string {
	return fmt.Sprintf(`Analyze this learner's state:

Question: %q
Topic: %s
Difficulty: %s
Previous attempts: %d

Identify:
1. The exact conceptual gap or confusion point
2. Missing foundational knowledge
3. The learner's current comprehension level (0-100)

Output ONLY a JSON object matching this schema:
%s`, in.Question, orDefault(in.Topic, "Unknown"), orDefault(in.Difficulty, "medium"), in.Attempts, diagnosisSchema)
}

func buildGuidancePrompt(in SocraticInput, d diagnosisPayload) string {
	material := in.Context.Context
	if material == "" {
		material = "No specific materials available"
	}

	return fmt.Sprintf(`A learner is stuck on: %q

Diagnosis:
- Confusion point: %s
- Missing foundation: %s
- Comprehension level: %d%%

Relevant course material:
%s

Rules:
- never give the full solution or answer
- never write complete code
- ask 2-3 leading questions that guide discovery
- give conceptual hints, not implementation

Output ONLY a JSON object matching this schema:
%s`, in.Question, d.ConfusionPoint, d.MissingFoundation, d.ComprehensionLevel, material, guidanceSchema)
}
