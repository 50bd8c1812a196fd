package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// HandlerKind identifies a request handler. The set is closed; Unclassified
// is the explicit fallback branch.
type HandlerKind string

const (
	HandlerSocratic     HandlerKind = "socratic"
	HandlerViva         HandlerKind = "viva"
	HandlerEvaluation   HandlerKind = "evaluation"
	HandlerTranslation  HandlerKind = "translation"
	HandlerSchedule     HandlerKind = "schedule"
	HandlerUnclassified HandlerKind = "unclassified"
)

func (k HandlerKind) String() string { return string(k) }

// IsValid reports whether k is a dispatchable handler. Unclassified is not.
func (k HandlerKind) IsValid() bool {
	switch k {
	case HandlerSocratic, HandlerViva, HandlerEvaluation, HandlerTranslation, HandlerSchedule:
		return true
	}
	return false
}

// AllHandlerKinds lists every dispatchable handler.
func AllHandlerKinds() []HandlerKind {
	return []HandlerKind{HandlerSocratic, HandlerViva, HandlerEvaluation, HandlerTranslation, HandlerSchedule}
}

// TutorRequest is an incoming learner interaction. Kind is matched first,
// Action second.
type TutorRequest struct {
	Kind      string
	Action    string
	LearnerID string
	Content   string
	Metadata  map[string]any
	Context   RetrievedContext
}

// MetaString returns metadata[key] as a string, or "" when absent.
func (r TutorRequest) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}

// MetaInt returns metadata[key] as an int. JSON numbers decode as float64 and
// some clients send numbers as strings; both are accepted when integral. ok is
// false when the key is absent. A present value that is not an integer is a
// validation error.
func (r TutorRequest) MetaInt(key string) (int, bool, error) {
	raw, present := r.Metadata[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false, NewValidationError(key, "must be an integer")
		}
		return int(v), true, nil
	case string:
		i, convErr := strconv.Atoi(strings.TrimSpace(v))
		if convErr != nil {
			return 0, false, NewValidationError(key, "must be an integer")
		}
		return i, true, nil
	}
	return 0, false, NewValidationError(key, "must be an integer")
}

// MetaBool returns metadata[key] as a bool, or def when absent or not a bool.
func (r TutorRequest) MetaBool(key string, def bool) bool {
	if r.Metadata == nil {
		return def
	}
	b, ok := r.Metadata[key].(bool)
	if !ok {
		return def
	}
	return b
}

// RoutingDecision is the ephemeral outcome of classification.
type RoutingDecision struct {
	Handler     HandlerKind
	PostProcess bool
	Reasoning   string
	AIRouted    bool
	Fallback    bool
}

// RouteResult is what the router returns to the caller.
type RouteResult struct {
	Decision    RoutingDecision
	Output      any
	Translated  bool
	Translation any
	Trace       []string
	Duration    time.Duration
}

// ExecutionRecord is one entry in the router's execution history.
type ExecutionRecord struct {
	RequestID string
	LearnerID string
	Handler   HandlerKind
	Trace     []string
	Fallback  bool
	Err       string
	StartedAt time.Time
	Duration  time.Duration
}

// RouterMetrics are cumulative router counters.
type RouterMetrics struct {
	TotalRequests   int
	Fallbacks       int
	Failures        int
	ByHandler       map[HandlerKind]int
	AverageDuration time.Duration
}
