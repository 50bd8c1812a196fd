package router

import (
	"testing"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	tbl := newTable(map[string]string{
		"quiz":     "evaluation",
		"Homework": "viva",
		"ask":      "socratic",
		"broken":   "nope",
	})

	tests := []struct {
		name        string
		kind        string
		action      string
		wantHandler domain.HandlerKind
		wantPost    bool
	}{
		{name: "question", kind: "question", wantHandler: domain.HandlerSocratic, wantPost: true},
		{name: "chat", kind: "chat", wantHandler: domain.HandlerSocratic, wantPost: true},
		{name: "upload", kind: "upload", wantHandler: domain.HandlerViva},
		{name: "grade", kind: "grade", wantHandler: domain.HandlerEvaluation},
		{name: "explain", kind: "explain", wantHandler: domain.HandlerTranslation},
		{name: "progress", kind: "progress", wantHandler: domain.HandlerSchedule},
		{name: "case and space", kind: "  Review ", wantHandler: domain.HandlerSchedule},
		{name: "action when kind empty", action: "submission", wantHandler: domain.HandlerViva},
		{name: "action when kind unknown", kind: "mystery", action: "evaluate", wantHandler: domain.HandlerEvaluation},
		{name: "kind wins over action", kind: "translate", action: "grade", wantHandler: domain.HandlerTranslation},
		{name: "alias", kind: "quiz", wantHandler: domain.HandlerEvaluation},
		{name: "alias key lowercased", kind: "homework", wantHandler: domain.HandlerViva},
		{name: "socratic alias post-processes", kind: "ask", wantHandler: domain.HandlerSocratic, wantPost: true},
		{name: "invalid alias ignored", kind: "broken", wantHandler: domain.HandlerUnclassified},
		{name: "no match", kind: "mystery", wantHandler: domain.HandlerUnclassified},
		{name: "empty", wantHandler: domain.HandlerUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tbl.lookup(tt.kind, tt.action)
			if got.Handler != tt.wantHandler {
				t.Errorf("Handler: got %q, want %q", got.Handler, tt.wantHandler)
			}
			if got.PostProcess != tt.wantPost {
				t.Errorf("PostProcess: got %v, want %v", got.PostProcess, tt.wantPost)
			}
			if got.AIRouted || got.Fallback {
				t.Errorf("static lookup must not be AI routed or fallback: %+v", got)
			}
		})
	}
}

func TestNewTable_DoesNotMutateStaticRoutes(t *testing.T) {
	t.Parallel()

	_ = newTable(map[string]string{"question": "schedule"})

	if staticRoutes["question"].handler != domain.HandlerSocratic {
		t.Error("aliases leaked into the static table")
	}
}

func TestHistory_Ring(t *testing.T) {
	t.Parallel()

	h := newHistory(3)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		rec := domain.ExecutionRecord{RequestID: id, Handler: domain.HandlerSocratic}
		if i == 1 {
			rec.Fallback = true
		}
		if i == 4 {
			rec.Err = "boom"
			rec.Handler = domain.HandlerViva
		}
		h.add(rec)
	}

	got := h.recent(0)
	want := []string{"e", "d", "c"}
	if len(got) != len(want) {
		t.Fatalf("records: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].RequestID != want[i] {
			t.Errorf("record %d: got %q, want %q", i, got[i].RequestID, want[i])
		}
	}

	if top := h.recent(1); len(top) != 1 || top[0].RequestID != "e" {
		t.Errorf("recent(1): got %+v", top)
	}

	m := h.metrics()
	if m.TotalRequests != 5 || m.Fallbacks != 1 || m.Failures != 1 {
		t.Errorf("metrics: got %+v", m)
	}
	if m.ByHandler[domain.HandlerSocratic] != 4 || m.ByHandler[domain.HandlerViva] != 1 {
		t.Errorf("ByHandler: got %v", m.ByHandler)
	}
}

func TestHistory_Disabled(t *testing.T) {
	t.Parallel()

	h := newHistory(0)
	h.add(domain.ExecutionRecord{RequestID: "a"})

	if got := h.recent(10); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
	if got := h.metrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests: got %d, want 1", got)
	}
}
