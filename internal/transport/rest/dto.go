package rest

import (
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/coach"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

// ---------------------------------------------------------------------------
// Readiness
// ---------------------------------------------------------------------------

type conceptResponse struct {
	ConceptID        string     `json:"conceptId"`
	MasteryLevel     int        `json:"masteryLevel"`
	RepetitionCount  int        `json:"repetitionCount"`
	InteractionCount int        `json:"interactionCount"`
	MistakeCount     int        `json:"mistakeCount"`
	LastReviewed     *time.Time `json:"lastReviewed,omitempty"`
	NextReview       *time.Time `json:"nextReview,omitempty"`
}

func toConceptResponse(c *domain.ConceptRecord) conceptResponse {
	return conceptResponse{
		ConceptID:        c.ConceptID,
		MasteryLevel:     c.MasteryLevel,
		RepetitionCount:  c.RepetitionCount,
		InteractionCount: len(c.Interactions),
		MistakeCount:     len(c.Mistakes),
		LastReviewed:     c.LastReviewed,
		NextReview:       c.NextReview,
	}
}

type queueItemResponse struct {
	ConceptID        string `json:"conceptId"`
	Priority         int    `json:"priority"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	MasteryLevel     int    `json:"masteryLevel"`
	DaysOverdue      int    `json:"daysOverdue"`
}

type recommendationResponse struct {
	Concepts     []string `json:"concepts"`
	TotalMinutes int      `json:"totalMinutes"`
	Message      string   `json:"message"`
}

type queueResponse struct {
	Items                 []queueItemResponse    `json:"items"`
	TotalDue              int                    `json:"totalDue"`
	EstimatedTotalMinutes int                    `json:"estimatedTotalMinutes"`
	Recommendation        recommendationResponse `json:"recommendation"`
}

func toQueueResponse(q domain.ReviewQueue) queueResponse {
	items := make([]queueItemResponse, len(q.Items))
	for i, it := range q.Items {
		items[i] = queueItemResponse(it)
	}
	concepts := q.Recommendation.Concepts
	if concepts == nil {
		concepts = []string{}
	}
	return queueResponse{
		Items:                 items,
		TotalDue:              q.TotalDue,
		EstimatedTotalMinutes: q.EstimatedTotalMinutes,
		Recommendation: recommendationResponse{
			Concepts:     concepts,
			TotalMinutes: q.Recommendation.TotalMinutes,
			Message:      q.Recommendation.Message,
		},
	}
}

type suggestionResponse struct {
	ConceptID        string `json:"conceptId"`
	Kind             string `json:"kind"`
	Priority         string `json:"priority"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Reason           string `json:"reason"`
}

func toSuggestionsResponse(in []domain.ResearchSuggestion) []suggestionResponse {
	out := make([]suggestionResponse, len(in))
	for i, s := range in {
		out[i] = suggestionResponse{
			ConceptID:        s.ConceptID,
			Kind:             string(s.Kind),
			Priority:         string(s.Priority),
			EstimatedMinutes: s.EstimatedMinutes,
			Reason:           s.Reason,
		}
	}
	return out
}

type statsResponse struct {
	TotalConcepts     int `json:"totalConcepts"`
	AverageMastery    int `json:"averageMastery"`
	WeakAreas         int `json:"weakAreas"`
	CurrentStreak     int `json:"currentStreak"`
	LongestStreak     int `json:"longestStreak"`
	ConceptsExcellent int `json:"conceptsExcellent"`
	ConceptsNeedWork  int `json:"conceptsNeedWork"`
}

// ---------------------------------------------------------------------------
// Retrieval
// ---------------------------------------------------------------------------

type searchResultResponse struct {
	ChunkID string  `json:"chunkId"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Type    string  `json:"type"`
	Source  string  `json:"source"`
}

type searchResponse struct {
	Results    []searchResultResponse `json:"results"`
	TotalFound int                    `json:"totalFound"`
}

func toSearchResponse(out *retrieval.SearchOutput) searchResponse {
	results := make([]searchResultResponse, len(out.Results))
	for i, r := range out.Results {
		results[i] = searchResultResponse{
			ChunkID: r.Chunk.ID,
			Content: r.Chunk.Content,
			Score:   r.Score,
			Type:    r.Chunk.Metadata.Type,
			Source:  r.Chunk.Metadata.Source,
		}
	}
	return searchResponse{Results: results, TotalFound: out.TotalFound}
}

type contextSourceResponse struct {
	ChunkID string  `json:"chunkId"`
	Type    string  `json:"type"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

type contextResponse struct {
	Context    string                  `json:"context"`
	Sources    []contextSourceResponse `json:"sources"`
	TokenCount int                     `json:"tokenCount"`
}

func toContextResponse(c domain.RetrievedContext) contextResponse {
	sources := make([]contextSourceResponse, len(c.Sources))
	for i, s := range c.Sources {
		sources[i] = contextSourceResponse(s)
	}
	return contextResponse{Context: c.Context, Sources: sources, TokenCount: c.TokenCount}
}

// ---------------------------------------------------------------------------
// Viva
// ---------------------------------------------------------------------------

type questionResponse struct {
	Index         int    `json:"index"`
	Text          string `json:"text"`
	FocusArea     string `json:"focusArea"`
	ExpectedDepth string `json:"expectedDepth"`
}

type evaluationResponse struct {
	Score    int      `json:"score"`
	Passed   bool     `json:"passed"`
	RedFlags []string `json:"redFlags"`
	Feedback string   `json:"feedback"`
}

type answerResponse struct {
	QuestionIndex int                `json:"questionIndex"`
	Question      string             `json:"question"`
	Answer        string             `json:"answer"`
	Evaluation    evaluationResponse `json:"evaluation"`
	JudgeFailed   bool               `json:"judgeFailed"`
	AnsweredAt    time.Time          `json:"answeredAt"`
}

type analysisResponse struct {
	Complexity          string   `json:"complexity"`
	KeyConcepts         []string `json:"keyConcepts"`
	PotentialWeaknesses []string `json:"potentialWeaknesses"`
	DecisionPoints      []string `json:"decisionPoints"`
	Dependencies        []string `json:"dependencies"`
}

type resultResponse struct {
	Approved     bool     `json:"approved"`
	Verdict      string   `json:"verdict"`
	AverageScore float64  `json:"averageScore"`
	PassRate     float64  `json:"passRate"`
	Summary      string   `json:"summary"`
	RedFlags     []string `json:"redFlags"`
	Feedback     []string `json:"feedback"`
	NextSteps    []string `json:"nextSteps"`
}

type sessionResponse struct {
	ID             string             `json:"id"`
	Status         string             `json:"status"`
	SubmissionType string             `json:"submissionType"`
	Analysis       analysisResponse   `json:"analysis"`
	Questions      []questionResponse `json:"questions"`
	Answers        []answerResponse   `json:"answers"`
	NextQuestion   *int               `json:"nextQuestion,omitempty"`
	Result         *resultResponse    `json:"result,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	FinalizedAt    *time.Time         `json:"finalizedAt,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toQuestionResponse(q domain.ValidationQuestion) questionResponse {
	return questionResponse(q)
}

func toAnswerResponse(a domain.Answer) answerResponse {
	return answerResponse{
		QuestionIndex: a.QuestionIndex,
		Question:      a.Question,
		Answer:        a.Text,
		Evaluation: evaluationResponse{
			Score:    a.Evaluation.Score,
			Passed:   a.Evaluation.Passed,
			RedFlags: nonNil(a.Evaluation.RedFlags),
			Feedback: a.Evaluation.Feedback,
		},
		JudgeFailed: a.JudgeFailed,
		AnsweredAt:  a.AnsweredAt,
	}
}

func toSessionResponse(s *domain.ValidationSession) sessionResponse {
	questions := make([]questionResponse, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = toQuestionResponse(q)
	}
	answers := make([]answerResponse, len(s.Answers))
	for i, a := range s.Answers {
		answers[i] = toAnswerResponse(a)
	}

	resp := sessionResponse{
		ID:             s.ID.String(),
		Status:         s.Status.String(),
		SubmissionType: s.SubmissionType,
		Analysis: analysisResponse{
			Complexity:          s.Analysis.Complexity,
			KeyConcepts:         nonNil(s.Analysis.KeyConcepts),
			PotentialWeaknesses: nonNil(s.Analysis.PotentialWeaknesses),
			DecisionPoints:      nonNil(s.Analysis.DecisionPoints),
			Dependencies:        nonNil(s.Analysis.Dependencies),
		},
		Questions:   questions,
		Answers:     answers,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		FinalizedAt: s.FinalizedAt,
	}
	if !s.IsComplete() {
		next := s.NextQuestionIndex()
		resp.NextQuestion = &next
	}
	if s.Result != nil {
		resp.Result = &resultResponse{
			Approved:     s.Result.Verdict == domain.VerdictApproved,
			Verdict:      s.Result.Verdict.String(),
			AverageScore: s.Result.AverageScore,
			PassRate:     s.Result.PassRate,
			Summary:      s.Result.Summary,
			RedFlags:     nonNil(s.Result.RedFlags),
			Feedback:     nonNil(s.Result.Feedback),
			NextSteps:    nonNil(s.Result.NextSteps),
		}
	}
	return resp
}

type answerOutcomeResponse struct {
	Answer       answerResponse    `json:"answer"`
	NextQuestion *questionResponse `json:"nextQuestion,omitempty"`
	Answered     int               `json:"answered"`
	Total        int               `json:"total"`
	Finalized    bool              `json:"finalized"`
	Session      sessionResponse   `json:"session"`
}

func toAnswerOutcomeResponse(o *viva.AnswerOutcome) answerOutcomeResponse {
	resp := answerOutcomeResponse{
		Answer:    toAnswerResponse(o.Answer),
		Answered:  o.Answered,
		Total:     o.Total,
		Finalized: o.Finalized(),
		Session:   toSessionResponse(o.Session),
	}
	if o.NextQuestion != nil {
		q := toQuestionResponse(*o.NextQuestion)
		resp.NextQuestion = &q
	}
	return resp
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

type socraticResponse struct {
	Type             string   `json:"type"`
	Content          string   `json:"content"`
	Hints            []string `json:"hints"`
	LeadingQuestions []string `json:"leadingQuestions"`
	ConceptualGaps   []string `json:"conceptualGaps"`
	NextStep         string   `json:"nextStep,omitempty"`
	Suggestions      []string `json:"suggestions"`
	Prohibited       bool     `json:"prohibited"`
	Degraded         bool     `json:"degraded"`
}

type criterionResponse struct {
	Name          string   `json:"name"`
	Weight        int      `json:"weight"`
	Score         int      `json:"score"`
	Justification string   `json:"justification"`
	Examples      []string `json:"examples"`
}

type rubricResponse struct {
	Mode             string              `json:"mode"`
	OverallScore     int                 `json:"overallScore"`
	Grade            string              `json:"grade"`
	Criteria         []criterionResponse `json:"criteria"`
	Strengths        []string            `json:"strengths"`
	Weaknesses       []string            `json:"weaknesses"`
	Feedback         string              `json:"feedback"`
	Commentary       string              `json:"commentary"`
	ImprovementAreas []string            `json:"improvementAreas"`
}

type translationResponse struct {
	Language          string          `json:"language"`
	NativeText        string          `json:"nativeText"`
	Transliteration   string          `json:"transliteration,omitempty"`
	CulturalAnalogy   string          `json:"culturalAnalogy,omitempty"`
	TechnicalMapping  string          `json:"technicalMapping,omitempty"`
	RealWorldScenario string          `json:"realWorldScenario,omitempty"`
	KeyTerms          []coach.KeyTerm `json:"keyTerms"`
	Degraded          bool            `json:"degraded"`
}

func toTranslationResponse(t *coach.Translation) translationResponse {
	terms := t.KeyTerms
	if terms == nil {
		terms = []coach.KeyTerm{}
	}
	return translationResponse{
		Language:          t.Language,
		NativeText:        t.NativeText,
		Transliteration:   t.Transliteration,
		CulturalAnalogy:   t.CulturalAnalogy,
		TechnicalMapping:  t.TechnicalMapping,
		RealWorldScenario: t.RealWorldScenario,
		KeyTerms:          terms,
		Degraded:          t.Degraded,
	}
}

// toOutputResponse converts a handler output into its JSON shape.
func toOutputResponse(out any) any {
	switch v := out.(type) {
	case *coach.SocraticReply:
		return socraticResponse{
			Type:             v.Kind,
			Content:          v.Content,
			Hints:            nonNil(v.Hints),
			LeadingQuestions: nonNil(v.LeadingQuestions),
			ConceptualGaps:   nonNil(v.ConceptualGaps),
			NextStep:         v.NextStep,
			Suggestions:      nonNil(v.Suggestions),
			Prohibited:       v.Prohibited,
			Degraded:         v.Degraded,
		}
	case *coach.RubricEvaluation:
		criteria := make([]criterionResponse, len(v.Criteria))
		for i, c := range v.Criteria {
			criteria[i] = criterionResponse{
				Name:          c.Name,
				Weight:        c.Weight,
				Score:         c.Score,
				Justification: c.Justification,
				Examples:      nonNil(c.Examples),
			}
		}
		return rubricResponse{
			Mode:             v.Mode,
			OverallScore:     v.OverallScore,
			Grade:            v.Grade,
			Criteria:         criteria,
			Strengths:        nonNil(v.Strengths),
			Weaknesses:       nonNil(v.Weaknesses),
			Feedback:         v.Feedback,
			Commentary:       v.Commentary,
			ImprovementAreas: nonNil(v.ImprovementAreas),
		}
	case *coach.Translation:
		return toTranslationResponse(v)
	case *domain.ValidationSession:
		return toSessionResponse(v)
	case *viva.AnswerOutcome:
		return toAnswerOutcomeResponse(v)
	case domain.ReviewQueue:
		return toQueueResponse(v)
	case []domain.ResearchSuggestion:
		return toSuggestionsResponse(v)
	case domain.LearnerStats:
		return statsResponse(v)
	default:
		return v
	}
}

type interactionResponse struct {
	Handler     string   `json:"handler"`
	Reasoning   string   `json:"reasoning,omitempty"`
	AIRouted    bool     `json:"aiRouted"`
	Fallback    bool     `json:"fallback"`
	PostProcess bool     `json:"postProcess"`
	Output      any      `json:"output"`
	Translated  bool     `json:"translated"`
	Translation any      `json:"translation,omitempty"`
	Trace       []string `json:"trace"`
	DurationMs  int64    `json:"durationMs"`
}

func toInteractionResponse(res *domain.RouteResult) interactionResponse {
	resp := interactionResponse{
		Handler:     res.Decision.Handler.String(),
		Reasoning:   res.Decision.Reasoning,
		AIRouted:    res.Decision.AIRouted,
		Fallback:    res.Decision.Fallback,
		PostProcess: res.Decision.PostProcess,
		Output:      toOutputResponse(res.Output),
		Translated:  res.Translated,
		Trace:       nonNil(res.Trace),
		DurationMs:  res.Duration.Milliseconds(),
	}
	if res.Translation != nil {
		resp.Translation = toOutputResponse(res.Translation)
	}
	return resp
}

type executionResponse struct {
	RequestID  string    `json:"requestId,omitempty"`
	Handler    string    `json:"handler"`
	Trace      []string  `json:"trace"`
	Fallback   bool      `json:"fallback"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
}

type metricsResponse struct {
	TotalRequests     int                 `json:"totalRequests"`
	Fallbacks         int                 `json:"fallbacks"`
	Failures          int                 `json:"failures"`
	ByHandler         map[string]int      `json:"byHandler"`
	AverageDurationMs float64             `json:"averageDurationMs"`
	Recent            []executionResponse `json:"recent"`
}

func toMetricsResponse(m domain.RouterMetrics, recent []domain.ExecutionRecord, learner string) metricsResponse {
	byHandler := make(map[string]int, len(m.ByHandler))
	for k, v := range m.ByHandler {
		byHandler[k.String()] = v
	}

	records := []executionResponse{}
	for _, rec := range recent {
		// Learners only see their own executions.
		if rec.LearnerID != learner {
			continue
		}
		records = append(records, executionResponse{
			RequestID:  rec.RequestID,
			Handler:    rec.Handler.String(),
			Trace:      nonNil(rec.Trace),
			Fallback:   rec.Fallback,
			Error:      rec.Err,
			StartedAt:  rec.StartedAt,
			DurationMs: rec.Duration.Milliseconds(),
		})
	}

	return metricsResponse{
		TotalRequests:     m.TotalRequests,
		Fallbacks:         m.Fallbacks,
		Failures:          m.Failures,
		ByHandler:         byHandler,
		AverageDurationMs: float64(m.AverageDuration) / float64(time.Millisecond),
		Recent:            records,
	}
}
