// Package llm adapts the Anthropic Messages API to the generation and judge
// ports used by the tutoring services.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Options configures a Client.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// Client is a generation service backed by Claude.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	log       *slog.Logger
}

// NewClient creates a Client. Extra request options are appended after the
// ones derived from opts (tests use them to point at a local server).
func NewClient(log *slog.Logger, opts Options, extra ...option.RequestOption) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	reqOpts = append(reqOpts, extra...)

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &Client{
		api:       anthropic.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: maxTokens,
		timeout:   opts.Timeout,
		log:       log.With("adapter", "llm"),
	}
}

// Complete sends a single-turn prompt and returns the concatenated text blocks.
func (c *Client) Complete(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = opts.MaxTokens
	}
	if opts.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.System}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", &domain.GenerationError{Op: "complete", Err: err}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &domain.GenerationError{Op: "complete", Err: errors.New("empty response")}
	}

	c.log.DebugContext(ctx, "completion",
		slog.String("model", c.model),
		slog.Int64("input_tokens", msg.Usage.InputTokens),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
		slog.Duration("duration", time.Since(start)),
	)
	return b.String(), nil
}

// CompleteStructured asks for a JSON object matching schema and decodes it into out.
// A response that is not a JSON object, or does not decode into out, is
// reported as ErrSchemaMismatch.
func (c *Client) CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error {
	if opts.System == "" {
		opts.System = "You respond with a single JSON object and nothing else."
	}
	if !strings.Contains(prompt, schema) {
		prompt = prompt + "\n\nOutput ONLY a JSON object matching this schema:\n" + schema
	}

	text, err := c.Complete(ctx, prompt, opts)
	if err != nil {
		return err
	}

	// Extract JSON from the response (between first { and last }).
	raw, err := extractJSON(text)
	if err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)}
	}
	if !json.Valid([]byte(raw)) {
		return &domain.GenerationError{Op: "complete_structured", Err: fmt.Errorf("%w: response is not valid JSON", domain.ErrSchemaMismatch)}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &domain.GenerationError{Op: "complete_structured", Err: fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)}
	}
	return nil
}

func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no JSON object found in response")
	}
	return s[start : end+1], nil
}
