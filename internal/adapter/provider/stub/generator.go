// Package stub provides deterministic offline stand-ins for the generation
// service and the viva judge. They let the server run without network access.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const defaultRepeat = 4

// Generator answers structured prompts by instantiating the requested schema.
// Alternatives written as "a | b" resolve to the first option, strings become
// "<field> <n>", numbers become Score and booleans become true. Array
// templates are repeated Repeat times.
type Generator struct {
	Score  float64
	Repeat int
}

// NewGenerator returns a Generator scoring 70 with four items per array.
func NewGenerator() *Generator {
	return &Generator{Score: 70, Repeat: defaultRepeat}
}

// Complete echoes the first line of the prompt.
func (g *Generator) Complete(ctx context.Context, prompt string, _ domain.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.GenerationError{Op: "complete", Err: err}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	return "Offline reply: " + first, nil
}

// CompleteStructured fills out from schema. A schema that is not valid JSON
// yields ErrSchemaMismatch.
func (g *Generator) CompleteStructured(ctx context.Context, _, schema string, _ domain.GenerateOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: err}
	}

	var tmpl any
	if err := json.Unmarshal([]byte(schema), &tmpl); err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)}
	}

	raw, err := json.Marshal(g.fill(tmpl, "value", 1))
	if err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)}
	}
	return nil
}

func (g *Generator) fill(v any, field string, n int) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = g.fill(child, k, n)
		}
		return out
	case []any:
		if len(t) == 0 {
			return []any{}
		}
		repeat := g.Repeat
		if repeat <= 0 {
			repeat = defaultRepeat
		}
		out := make([]any, repeat)
		for i := range out {
			out[i] = g.fill(t[0], field, i+1)
		}
		return out
	case string:
		if first, _, ok := strings.Cut(t, "|"); ok {
			return strings.TrimSpace(first)
		}
		return fmt.Sprintf("%s %d", field, n)
	case float64:
		return g.Score
	case bool:
		return true
	default:
		return t
	}
}
