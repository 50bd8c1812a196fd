package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const fallbackReasoning = "Fallback to Socratic handler"

type route struct {
	handler     domain.HandlerKind
	postProcess bool
}

// table maps declared request kinds and actions to handlers.
type table map[string]route

var staticRoutes = table{
	"question": {domain.HandlerSocratic, true},
	"chat":     {domain.HandlerSocratic, true},

	"submission": {domain.HandlerViva, false},
	"upload":     {domain.HandlerViva, false},

	"evaluate": {domain.HandlerEvaluation, false},
	"grade":    {domain.HandlerEvaluation, false},

	"translate": {domain.HandlerTranslation, false},
	"explain":   {domain.HandlerTranslation, false},

	"schedule": {domain.HandlerSchedule, false},
	"review":   {domain.HandlerSchedule, false},
	"progress": {domain.HandlerSchedule, false},
}

// newTable merges configured aliases over the static routes. Aliases to
// the Socratic handler are post-processed like the static ones.
func newTable(aliases map[string]string) table {
	t := make(table, len(staticRoutes)+len(aliases))
	for k, r := range staticRoutes {
		t[k] = r
	}
	for kind, handler := range aliases {
		h := domain.HandlerKind(handler)
		if !h.IsValid() {
			continue
		}
		t[strings.ToLower(kind)] = route{handler: h, postProcess: h == domain.HandlerSocratic}
	}
	return t
}

// lookup matches kind first, then action. A miss yields HandlerUnclassified.
func (t table) lookup(kind, action string) domain.RoutingDecision {
	for _, key := range []string{kind, action} {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if r, ok := t[key]; ok {
			return domain.RoutingDecision{
				Handler:     r.handler,
				PostProcess: r.postProcess,
				Reasoning:   fmt.Sprintf("static route %q", key),
			}
		}
	}
	return domain.RoutingDecision{Handler: domain.HandlerUnclassified}
}

type classification struct {
	Handler   string `json:"handler"`
	Reasoning string `json:"reasoning"`
}

const classificationSchema = `{"handler": "socratic | viva | evaluation | translation | schedule", "reasoning": "string"}`

func fallbackDecision() domain.RoutingDecision {
	return domain.RoutingDecision{
		Handler:     domain.HandlerSocratic,
		PostProcess: true,
		Reasoning:   fallbackReasoning,
		Fallback:    true,
	}
}

// classify asks the generation service to pick a handler. Any failure,
// including an unknown handler name, degrades to the fallback decision.
func (s *Service) classify(ctx context.Context, req domain.TutorRequest) domain.RoutingDecision {
	var c classification
	err := s.classifier.CompleteStructured(ctx, buildClassificationPrompt(req), classificationSchema, domain.GenerateOptions{
		System:      "You route learner requests in a tutoring system. Answer with the single best handler.",
		Temperature: 0.1,
		MaxTokens:   256,
	}, &c)
	if err == nil {
		h := domain.HandlerKind(strings.ToLower(strings.TrimSpace(c.Handler)))
		if h.IsValid() {
			return domain.RoutingDecision{
				Handler:     h,
				PostProcess: h == domain.HandlerSocratic,
				Reasoning:   c.Reasoning,
				AIRouted:    true,
			}
		}
		err = fmt.Errorf("%w: unknown handler %q", domain.ErrSchemaMismatch, c.Handler)
	}

	s.log.WarnContext(ctx, "classification failed, using fallback handler",
		slog.String("learner_id", req.LearnerID),
		slog.String("kind", req.Kind),
		slog.String("error", err.Error()),
	)
	return fallbackDecision()
}

func buildClassificationPrompt(req domain.TutorRequest) string {
	return fmt.Sprintf(`Classify this learner request.

Declared kind: %q
Declared action: %q
Content: %q

Handlers:
- socratic: conceptual questions, confusion, asking for help
- viva: submitting own work to prove understanding
- evaluation: grading a submission against a rubric
- translation: explaining a concept in another language
- schedule: review queue, progress, what to study next

Output ONLY a JSON object matching this schema:
%s`, req.Kind, req.Action, truncate(req.Content, 1000), classificationSchema)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
